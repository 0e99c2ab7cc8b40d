package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/gobatis/internal/cache"
	"github.com/specialistvlad/gobatis/internal/datasource"
	"github.com/specialistvlad/gobatis/internal/mapping"
	"github.com/specialistvlad/gobatis/internal/settings"
	"github.com/specialistvlad/gobatis/internal/typealias"
)

// Configuration is the registry of everything a session needs: settings,
// type aliases, the environment, caches, result maps and mapped statements.
// Registration and lookup are goroutine-safe.
type Configuration struct {
	Settings    settings.Settings
	Aliases     *typealias.Registry
	Environment *Environment

	mu              sync.RWMutex
	caches          strictMap[cache.Cache]
	resultMaps      strictMap[*mapping.ResultMap]
	statements      strictMap[*mapping.MappedStatement]
	cacheRefs       map[string]string
	loadedResources map[string]struct{}

	pendingMu sync.Mutex
	pending   []*pendingTask
}

// Option configures a Configuration.
type Option func(*Configuration)

// WithAliases replaces the default alias registry.
func WithAliases(r *typealias.Registry) Option {
	return func(c *Configuration) {
		c.Aliases = r
	}
}

// WithSettings replaces the default settings.
func WithSettings(s settings.Settings) Option {
	return func(c *Configuration) {
		c.Settings = s
	}
}

// New creates a Configuration with default settings and an alias registry
// that already knows the built-in data source factories.
func New(opts ...Option) (*Configuration, error) {
	c := &Configuration{
		Settings:        settings.Defaults(),
		caches:          newStrictMap[cache.Cache]("caches collection"),
		resultMaps:      newStrictMap[*mapping.ResultMap]("result maps collection"),
		statements:      newStrictMap[*mapping.MappedStatement]("mapped statements collection"),
		cacheRefs:       make(map[string]string),
		loadedResources: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Aliases == nil {
		c.Aliases = typealias.New()
	}
	for alias, t := range datasource.Aliases() {
		if err := c.Aliases.Register(alias, t); err != nil {
			return nil, fmt.Errorf("registering data source alias: %w", err)
		}
	}
	return c, nil
}

// AddCache registers a namespace cache under its ID.
func (c *Configuration) AddCache(ch cache.Cache) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.caches.put(ch.ID(), ch)
}

// Cache looks up a namespace cache.
func (c *Configuration) Cache(id string) (cache.Cache, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.caches.get(id)
}

// HasCache reports whether a namespace has a cache.
func (c *Configuration) HasCache(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.caches.has(id)
}

// AddCacheRef records that namespace shares the cache of referenced.
func (c *Configuration) AddCacheRef(namespace, referenced string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheRefs[namespace] = referenced
}

// CacheRef returns the namespace whose cache namespace uses, if any.
func (c *Configuration) CacheRef(namespace string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ref, ok := c.cacheRefs[namespace]
	return ref, ok
}

// AddResultMap registers a result map under its full ID.
func (c *Configuration) AddResultMap(rm *mapping.ResultMap) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resultMaps.put(rm.ID, rm)
}

// ResultMap looks up a result map by full or unambiguous short ID.
func (c *Configuration) ResultMap(id string) (*mapping.ResultMap, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resultMaps.get(id)
}

// HasResultMap reports whether ResultMap would succeed.
func (c *Configuration) HasResultMap(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resultMaps.has(id)
}

// AddMappedStatement registers a statement under its full ID.
func (c *Configuration) AddMappedStatement(ms *mapping.MappedStatement) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statements.put(ms.ID, ms)
}

// MappedStatement looks up a statement by full or unambiguous short ID.
func (c *Configuration) MappedStatement(id string) (*mapping.MappedStatement, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statements.get(id)
}

// HasStatement reports whether MappedStatement would succeed.
func (c *Configuration) HasStatement(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statements.has(id)
}

// MappedStatements returns every statement ordered by ID.
func (c *Configuration) MappedStatements() []*mapping.MappedStatement {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := c.statements.keys()
	out := make([]*mapping.MappedStatement, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.statements.items[k])
	}
	return out
}

// ResultMapIDs returns the full ID of every result map, sorted.
func (c *Configuration) ResultMapIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resultMaps.keys()
}

// CacheIDs returns the ID of every namespace cache, sorted.
func (c *Configuration) CacheIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.caches.keys()
}

// AddLoadedResource marks a file or mapper type as loaded.
func (c *Configuration) AddLoadedResource(resource string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadedResources[resource] = struct{}{}
}

// IsResourceLoaded reports whether AddLoadedResource was called for resource.
func (c *Configuration) IsResourceLoaded(resource string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.loadedResources[resource]
	return ok
}

// LoadedResources returns every loaded resource, sorted.
func (c *Configuration) LoadedResources() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.loadedResources))
	for r := range c.loadedResources {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

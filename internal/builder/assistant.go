package builder

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/specialistvlad/gobatis/internal/cache"
	"github.com/specialistvlad/gobatis/internal/config"
	"github.com/specialistvlad/gobatis/internal/mapping"
)

// inlineSuffix names the result map built for a statement that only has a
// result type.
const inlineSuffix = "-Inline"

// Assistant registers the elements of one namespace. It is shared by every
// resolver created for that namespace and is not goroutine-safe.
type Assistant struct {
	cfg       *config.Configuration
	source    mapping.Source
	namespace string

	currentCache cache.Cache
	// pendingCacheRef holds the referenced namespace while a cache-ref is
	// unresolved. Statements cannot be built until it is cleared.
	pendingCacheRef string
}

// NewAssistant creates an assistant for declarations read from source.
func NewAssistant(cfg *config.Configuration, source mapping.Source) *Assistant {
	return &Assistant{cfg: cfg, source: source}
}

func (a *Assistant) Configuration() *config.Configuration { return a.cfg }

func (a *Assistant) Namespace() string { return a.namespace }

func (a *Assistant) Source() mapping.Source { return a.source }

// SetNamespace fixes the namespace. It cannot be empty and cannot change once
// set.
func (a *Assistant) SetNamespace(namespace string) error {
	if namespace == "" {
		return fmt.Errorf("%s: the mapper namespace cannot be empty", a.source)
	}
	if a.namespace != "" && a.namespace != namespace {
		return fmt.Errorf("%s: wrong namespace, expected '%s' but found '%s'", a.source, a.namespace, namespace)
	}
	a.namespace = namespace
	return nil
}

// ApplyNamespace qualifies base with the namespace. References that already
// contain a dot point into another namespace and are returned as is. Element
// names being declared must not contain dots unless already qualified with
// this namespace.
func (a *Assistant) ApplyNamespace(base string, isReference bool) (string, error) {
	if base == "" {
		return "", nil
	}
	if isReference {
		if strings.Contains(base, ".") {
			return base, nil
		}
	} else {
		if strings.HasPrefix(base, a.namespace+".") {
			return base, nil
		}
		if strings.Contains(base, ".") {
			return "", fmt.Errorf("%s: dots are not allowed in element names, please remove it from %s", a.source, base)
		}
	}
	return a.namespace + "." + base, nil
}

// UseNewCache creates and registers the namespace cache.
func (a *Assistant) UseNewCache() (cache.Cache, error) {
	c := cache.NewPerpetual(a.namespace)
	if err := a.cfg.AddCache(c); err != nil {
		return nil, fmt.Errorf("%s: %w", a.source, err)
	}
	a.currentCache = c
	return c, nil
}

// UseCacheRef makes the namespace share the cache of another namespace. While
// that namespace has no cache the call returns an *config.IncompleteElementError
// and statements of this namespace stay incomplete too.
func (a *Assistant) UseCacheRef(namespace string) (cache.Cache, error) {
	if namespace == "" {
		return nil, fmt.Errorf("%s: cache-ref namespace cannot be empty", a.source)
	}
	a.cfg.AddCacheRef(a.namespace, namespace)
	a.pendingCacheRef = namespace

	c, err := a.cfg.Cache(namespace)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return nil, &config.IncompleteElementError{
				Element:   fmt.Sprintf("cache-ref of namespace %s", a.namespace),
				Reference: namespace,
				Cause:     err,
			}
		}
		return nil, err
	}
	a.currentCache = c
	a.pendingCacheRef = ""
	return c, nil
}

// AddResultMap registers a result map. With extend set, the parent's mappings
// are inherited unless the child maps the same property. A parent that is not
// registered yet makes the call incomplete.
func (a *Assistant) AddResultMap(id string, typ reflect.Type, extend string, discriminator *mapping.Discriminator, mappings []mapping.ResultMapping, autoMapping *bool) (*mapping.ResultMap, error) {
	fullID, err := a.ApplyNamespace(id, false)
	if err != nil {
		return nil, err
	}
	extend, err = a.ApplyNamespace(extend, true)
	if err != nil {
		return nil, err
	}

	resolved := make([]mapping.ResultMapping, 0, len(mappings))
	for _, m := range mappings {
		if m.NestedResultMapID, err = a.ApplyNamespace(m.NestedResultMapID, true); err != nil {
			return nil, err
		}
		resolved = append(resolved, m)
	}

	if extend != "" {
		parent, err := a.cfg.ResultMap(extend)
		if err != nil {
			if errors.Is(err, config.ErrNotFound) {
				return nil, &config.IncompleteElementError{
					Element:   "result map " + fullID,
					Reference: extend,
					Cause:     err,
				}
			}
			return nil, err
		}
		resolved = inherit(parent.Mappings, resolved)
		if typ == nil {
			typ = parent.Type
		}
	}

	if typ == nil {
		return nil, fmt.Errorf("%s: result map %s has no type", a.source, fullID)
	}

	if discriminator != nil {
		d := *discriminator
		d.Cases = make(map[string]string, len(discriminator.Cases))
		for value, ref := range discriminator.Cases {
			if d.Cases[value], err = a.ApplyNamespace(ref, true); err != nil {
				return nil, err
			}
		}
		discriminator = &d
	}

	rm := mapping.NewResultMap(fullID, typ, resolved, discriminator, autoMapping)
	rm.Source = a.source
	if err := a.cfg.AddResultMap(rm); err != nil {
		return nil, fmt.Errorf("%s: %w", a.source, err)
	}
	return rm, nil
}

// inherit appends the parent mappings whose property the child does not map.
func inherit(parent, child []mapping.ResultMapping) []mapping.ResultMapping {
	overridden := make(map[string]struct{}, len(child))
	for _, m := range child {
		overridden[m.Property] = struct{}{}
	}
	out := append([]mapping.ResultMapping(nil), child...)
	for _, m := range parent {
		if _, ok := overridden[m.Property]; !ok {
			out = append(out, m)
		}
	}
	return out
}

// StatementSpec declares a mapped statement.
type StatementSpec struct {
	ID          string
	CommandType mapping.CommandType
	SQL         string
	// ResultMap lists result map IDs separated by commas.
	ResultMap  string
	ResultType reflect.Type
	// FlushCache and UseCache default to false and true for selects, and
	// the opposite for everything else.
	FlushCache *bool
	UseCache   *bool
	Timeout    time.Duration
}

// AddMappedStatement registers a statement. It is incomplete while the
// namespace's cache-ref is unresolved or while a referenced result map is
// missing.
func (a *Assistant) AddMappedStatement(spec StatementSpec) (*mapping.MappedStatement, error) {
	id, err := a.ApplyNamespace(spec.ID, false)
	if err != nil {
		return nil, err
	}
	if a.pendingCacheRef != "" {
		return nil, &config.IncompleteElementError{
			Element:   "statement " + id,
			Reference: a.pendingCacheRef,
			Cause:     errors.New("cache-ref not resolved"),
		}
	}
	if strings.TrimSpace(spec.SQL) == "" {
		return nil, fmt.Errorf("%s: statement %s has no SQL", a.source, id)
	}

	resultMaps, err := a.statementResultMaps(id, spec)
	if err != nil {
		return nil, err
	}

	isSelect := spec.CommandType == mapping.CommandSelect
	timeout := spec.Timeout
	if timeout == 0 {
		timeout = a.cfg.Settings.DefaultStatementTimeout
	}

	ms := &mapping.MappedStatement{
		ID:          id,
		Source:      a.source,
		CommandType: spec.CommandType,
		SQL:         strings.TrimSpace(spec.SQL),
		ResultMaps:  resultMaps,
		Cache:       a.currentCache,
		FlushCache:  valueOrDefault(spec.FlushCache, !isSelect),
		UseCache:    valueOrDefault(spec.UseCache, isSelect),
		Timeout:     timeout,
	}
	if err := a.cfg.AddMappedStatement(ms); err != nil {
		return nil, fmt.Errorf("%s: %w", a.source, err)
	}
	return ms, nil
}

func (a *Assistant) statementResultMaps(id string, spec StatementSpec) ([]*mapping.ResultMap, error) {
	if spec.ResultMap == "" {
		if spec.ResultType == nil {
			return nil, nil
		}
		inline := mapping.NewResultMap(id+inlineSuffix, spec.ResultType, nil, nil, nil)
		inline.Source = a.source
		return []*mapping.ResultMap{inline}, nil
	}

	var out []*mapping.ResultMap
	for _, ref := range strings.Split(spec.ResultMap, ",") {
		ref, err := a.ApplyNamespace(strings.TrimSpace(ref), true)
		if err != nil {
			return nil, err
		}
		rm, err := a.cfg.ResultMap(ref)
		if err != nil {
			if errors.Is(err, config.ErrNotFound) {
				return nil, &config.IncompleteElementError{
					Element:   "statement " + id,
					Reference: ref,
					Cause:     err,
				}
			}
			return nil, err
		}
		out = append(out, rm)
	}
	return out, nil
}

func valueOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

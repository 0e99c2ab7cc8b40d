package typealias

import (
	"fmt"
	"math/big"
	"reflect"
	"sort"
	"sync"
	"time"
)

// Loader finds a type by its fully-qualified name.
type Loader interface {
	Load(name string) (reflect.Type, error)
}

// PackageLister is implemented by loaders that can enumerate the types of a
// package. Registry.RegisterPackage requires it.
type PackageLister interface {
	Package(pkgPath string) []reflect.Type
}

// Catalog is a goroutine-safe Loader backed by explicit registrations.
type Catalog struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewCatalog creates a catalog that already knows the predeclared types and
// the handful of standard library types the built-in aliases use.
func NewCatalog() *Catalog {
	c := &Catalog{types: make(map[string]reflect.Type)}
	for _, t := range predeclared {
		c.types[QualifiedName(t)] = t
	}
	return c
}

var predeclared = []reflect.Type{
	reflect.TypeFor[string](),
	reflect.TypeFor[bool](),
	reflect.TypeFor[int](),
	reflect.TypeFor[int8](),
	reflect.TypeFor[int16](),
	reflect.TypeFor[int32](),
	reflect.TypeFor[int64](),
	reflect.TypeFor[uint](),
	reflect.TypeFor[uint8](),
	reflect.TypeFor[uint16](),
	reflect.TypeFor[uint32](),
	reflect.TypeFor[uint64](),
	reflect.TypeFor[float32](),
	reflect.TypeFor[float64](),
	reflect.TypeFor[time.Time](),
	reflect.TypeFor[time.Duration](),
	reflect.TypeFor[big.Int](),
	reflect.TypeFor[big.Float](),
}

// Add registers named types by their qualified name. Pointer types are
// registered through their element type. Adding the same type twice is a
// no-op; adding a different type under an existing name fails.
func (c *Catalog) Add(types ...reflect.Type) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range types {
		if t == nil {
			return fmt.Errorf("cannot add nil type to catalog")
		}
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Name() == "" {
			return fmt.Errorf("cannot add unnamed type %s to catalog", t)
		}
		name := QualifiedName(t)
		if existing, ok := c.types[name]; ok && existing != t {
			return fmt.Errorf("catalog already holds a different type named '%s'", name)
		}
		c.types[name] = t
	}
	return nil
}

// Load implements Loader.
func (c *Catalog) Load(name string) (reflect.Type, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotFound, name)
	}
	return t, nil
}

// Package implements PackageLister. The result is ordered by type name.
func (c *Catalog) Package(pkgPath string) []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []reflect.Type
	for _, t := range c.types {
		if t.PkgPath() == pkgPath {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

// DefaultCatalog is the Loader used by registries created without WithLoader.
var DefaultCatalog = NewCatalog()

// Register adds types to DefaultCatalog. It is meant to be called from init
// functions, so a conflict panics.
func Register(types ...reflect.Type) {
	if err := DefaultCatalog.Add(types...); err != nil {
		panic(err)
	}
}

// QualifiedName returns "<pkgpath>.<Name>" for named types declared in a
// package and the plain type string for everything else.
func QualifiedName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

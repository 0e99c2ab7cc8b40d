package typealias

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Aliased lets a type choose the alias RegisterType derives for it. It may be
// implemented with a value or a pointer receiver.
type Aliased interface {
	TypeAlias() string
}

var aliasedType = reflect.TypeFor[Aliased]()

// Registry stores alias to type mappings. It is goroutine-safe.
type Registry struct {
	mu      sync.RWMutex
	aliases map[string]reflect.Type
	loader  Loader
}

// Option configures a Registry.
type Option func(*Registry)

// WithLoader replaces DefaultCatalog as the fallback loader.
func WithLoader(loader Loader) Option {
	return func(r *Registry) {
		r.loader = loader
	}
}

// New creates a Registry pre-populated with the built-in aliases.
func New(opts ...Option) *Registry {
	r := &Registry{
		aliases: make(map[string]reflect.Type),
		loader:  DefaultCatalog,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.registerBuiltins()
	return r
}

// normalize lower-cases an alias with English rules. A Caser keeps state, so
// one is created per call.
func normalize(alias string) string {
	return cases.Lower(language.English).String(alias)
}

// Resolve returns the type registered under name, or asks the loader for a
// type with that fully-qualified name. An empty name resolves to nil.
func (r *Registry) Resolve(name string) (reflect.Type, error) {
	if name == "" {
		return nil, nil
	}

	r.mu.RLock()
	t, ok := r.aliases[normalize(name)]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	t, err := r.loader.Load(name)
	if err != nil {
		return nil, &TypeError{
			Message: fmt.Sprintf("could not resolve type alias '%s'", name),
			Cause:   err,
		}
	}
	return t, nil
}

// Register maps alias to t. Registering the same pair twice is allowed;
// mapping an existing alias to another type fails with *AliasConflictError.
func (r *Registry) Register(alias string, t reflect.Type) error {
	if strings.TrimSpace(alias) == "" {
		return &TypeError{Message: "the parameter alias cannot be empty"}
	}
	if t == nil {
		return &TypeError{Message: fmt.Sprintf("the type for alias '%s' cannot be nil", alias)}
	}

	key := normalize(alias)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.aliases[key]; ok && existing != t {
		return &AliasConflictError{Alias: alias, Existing: existing, Requested: t}
	}
	r.aliases[key] = t
	return nil
}

// RegisterType registers t under the alias it declares through Aliased, or
// under its type name otherwise.
func (r *Registry) RegisterType(t reflect.Type) error {
	alias, err := DeriveAlias(t)
	if err != nil {
		return err
	}
	return r.Register(alias, t)
}

// RegisterName loads typeName through the loader and registers it as alias.
func (r *Registry) RegisterName(alias, typeName string) error {
	t, err := r.loader.Load(typeName)
	if err != nil {
		return &TypeError{
			Message: fmt.Sprintf("error registering type alias %s for %s", alias, typeName),
			Cause:   err,
		}
	}
	return r.Register(alias, t)
}

// RegisterPackage registers every concrete type the loader knows in pkgPath.
// When super is not nil only types assignable to it (or implementing it, for
// interfaces) are registered.
func (r *Registry) RegisterPackage(pkgPath string, super reflect.Type) error {
	lister, ok := r.loader.(PackageLister)
	if !ok {
		return &TypeError{Message: fmt.Sprintf("loader %T cannot list package '%s'", r.loader, pkgPath)}
	}

	for _, t := range lister.Package(pkgPath) {
		if t.Kind() == reflect.Interface {
			continue
		}
		if super != nil && !isA(t, super) {
			continue
		}
		if err := r.RegisterType(t); err != nil {
			return fmt.Errorf("registering package '%s': %w", pkgPath, err)
		}
	}
	return nil
}

// Aliases returns a snapshot of every registered alias.
func (r *Registry) Aliases() map[string]reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.aliases)
}

// DeriveAlias returns the alias RegisterType would use for t.
func DeriveAlias(t reflect.Type) (string, error) {
	if t == nil {
		return "", &TypeError{Message: "cannot derive an alias for a nil type"}
	}

	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	if base.Kind() != reflect.Interface && reflect.PointerTo(base).Implements(aliasedType) {
		if alias := reflect.New(base).Interface().(Aliased).TypeAlias(); alias != "" {
			return alias, nil
		}
	}

	if base.Name() == "" {
		return "", &TypeError{Message: fmt.Sprintf("cannot derive an alias for unnamed type %s", t)}
	}
	return base.Name(), nil
}

func isA(t, super reflect.Type) bool {
	if super.Kind() == reflect.Interface {
		return t.Implements(super) || reflect.PointerTo(t).Implements(super)
	}
	return t.AssignableTo(super)
}

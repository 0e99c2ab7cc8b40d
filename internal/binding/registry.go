package binding

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/specialistvlad/gobatis/internal/builder"
	"github.com/specialistvlad/gobatis/internal/config"
	"github.com/specialistvlad/gobatis/internal/ctxlog"
	"github.com/specialistvlad/gobatis/internal/session"
	"github.com/specialistvlad/gobatis/internal/typealias"
)

// Registry holds the proxy factory of every known mapper type.
type Registry struct {
	cfg *config.Configuration

	mu        sync.RWMutex
	factories map[reflect.Type]factory
}

// factory is the type-erased view of a *ProxyFactory[T].
type factory interface {
	MapperType() reflect.Type
	Namespace() string
	MethodCacheLen() int
}

func NewRegistry(cfg *config.Configuration) *Registry {
	return &Registry{cfg: cfg, factories: make(map[reflect.Type]factory)}
}

func (r *Registry) Configuration() *config.Configuration { return r.cfg }

// AddMapper registers the mapper type T and parses its tagged statements.
// Statements with missing references are queued on the configuration. On
// error the mapper is not registered.
func AddMapper[T any](ctx context.Context, r *Registry) error {
	typ := reflect.TypeFor[T]()
	name := typealias.QualifiedName(typ)
	if typ.Kind() != reflect.Struct {
		return &BindingError{Mapper: name, Message: "a mapper must be a struct of func fields"}
	}
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() || field.Type.Kind() != reflect.Func {
			continue
		}
		if _, err := parseSignature(field.Type); err != nil {
			return &BindingError{Mapper: name, Method: field.Name, Message: err.Error()}
		}
	}

	r.mu.Lock()
	if _, ok := r.factories[typ]; ok {
		r.mu.Unlock()
		return &BindingError{Mapper: name, Message: "type is already known to the mapper registry"}
	}
	r.factories[typ] = NewProxyFactory[T](r.cfg)
	r.mu.Unlock()

	if err := builder.NewAnnotationBuilder(r.cfg, typ).Parse(ctx); err != nil {
		r.mu.Lock()
		delete(r.factories, typ)
		r.mu.Unlock()
		return fmt.Errorf("parsing mapper %s: %w", name, err)
	}
	ctxlog.FromContext(ctx).Debug("Mapper registered.", "mapper", name, "namespace", builder.MapperNamespace(typ))
	return nil
}

// HasMapper reports whether the mapper type is registered.
func (r *Registry) HasMapper(typ reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[typ]
	return ok
}

// GetMapper returns an instance of the registered mapper T bound to sess.
func GetMapper[T any](r *Registry, sess session.Session) (*T, error) {
	typ := reflect.TypeFor[T]()
	r.mu.RLock()
	f, ok := r.factories[typ]
	r.mu.RUnlock()
	if !ok {
		return nil, &BindingError{Mapper: typealias.QualifiedName(typ), Message: "type is not known to the mapper registry"}
	}
	return f.(*ProxyFactory[T]).NewInstance(sess), nil
}

// Factory returns the proxy factory of the mapper T.
func Factory[T any](r *Registry) (*ProxyFactory[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[reflect.TypeFor[T]()].(*ProxyFactory[T])
	return f, ok
}

// MapperInfo describes a registered mapper.
type MapperInfo struct {
	Type          string `json:"type"`
	Namespace     string `json:"namespace"`
	CachedMethods int    `json:"cached_methods"`
}

// Mappers lists the registered mappers ordered by type name.
func (r *Registry) Mappers() []MapperInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MapperInfo, 0, len(r.factories))
	for typ, f := range r.factories {
		out = append(out, MapperInfo{
			Type:          typealias.QualifiedName(typ),
			Namespace:     f.Namespace(),
			CachedMethods: f.MethodCacheLen(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

package binding

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/gobatis/internal/builder"
	"github.com/specialistvlad/gobatis/internal/config"
	"github.com/specialistvlad/gobatis/internal/session"
	"golang.org/x/sync/singleflight"
)

// ProxyFactory creates instances of the mapper type T. Method strategies
// are built lazily on the first call of each method and shared by every
// instance of T.
type ProxyFactory[T any] struct {
	cfg       *config.Configuration
	typ       reflect.Type
	namespace string

	methodCache sync.Map // field name -> *MapperMethod
	group       singleflight.Group
	// builds counts strategy constructions.
	builds atomic.Int64
}

func NewProxyFactory[T any](cfg *config.Configuration) *ProxyFactory[T] {
	typ := reflect.TypeFor[T]()
	return &ProxyFactory[T]{
		cfg:       cfg,
		typ:       typ,
		namespace: builder.MapperNamespace(typ),
	}
}

func (f *ProxyFactory[T]) MapperType() reflect.Type { return f.typ }

func (f *ProxyFactory[T]) Namespace() string { return f.namespace }

// NewInstance returns a T whose exported func fields call into sess. Fields
// with an unsupported signature are left nil.
func (f *ProxyFactory[T]) NewInstance(sess session.Session) *T {
	instance := reflect.New(f.typ)
	for i := range f.typ.NumField() {
		field := f.typ.Field(i)
		if !field.IsExported() || field.Type.Kind() != reflect.Func {
			continue
		}
		sig, err := parseSignature(field.Type)
		if err != nil {
			continue
		}
		fn := reflect.MakeFunc(field.Type, func(in []reflect.Value) []reflect.Value {
			m, err := f.cachedMethod(field)
			if err != nil {
				return results(sig, reflect.Value{}, err)
			}
			return m.invoke(sess, in)
		})
		instance.Elem().Field(i).Set(fn)
	}
	return instance.Interface().(*T)
}

// cachedMethod returns the strategy for field, building it at most once
// even when first calls race.
func (f *ProxyFactory[T]) cachedMethod(field reflect.StructField) (*MapperMethod, error) {
	if m, ok := f.methodCache.Load(field.Name); ok {
		return m.(*MapperMethod), nil
	}
	v, err, _ := f.group.Do(field.Name, func() (any, error) {
		if m, ok := f.methodCache.Load(field.Name); ok {
			return m, nil
		}
		f.builds.Add(1)
		m, err := NewMapperMethod(f.cfg, f.typ, f.namespace, field)
		if err != nil {
			return nil, err
		}
		actual, _ := f.methodCache.LoadOrStore(field.Name, m)
		return actual, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*MapperMethod), nil
}

// MethodCacheLen returns the number of cached method strategies.
func (f *ProxyFactory[T]) MethodCacheLen() int {
	n := 0
	f.methodCache.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

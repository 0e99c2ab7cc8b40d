package builder

import (
	"fmt"
	"reflect"

	"github.com/specialistvlad/gobatis/internal/cache"
	"github.com/specialistvlad/gobatis/internal/config"
	"github.com/specialistvlad/gobatis/internal/mapping"
)

var (
	_ config.PendingResolution = (*CacheRefResolver)(nil)
	_ config.PendingResolution = (*ResultMapResolver)(nil)
	_ config.PendingResolution = (*StatementResolver)(nil)
	_ config.PendingResolution = (*MethodResolver)(nil)
)

// CacheRefResolver retries a cache-ref.
type CacheRefResolver struct {
	assistant *Assistant
	namespace string
}

func NewCacheRefResolver(assistant *Assistant, namespace string) *CacheRefResolver {
	return &CacheRefResolver{assistant: assistant, namespace: namespace}
}

// Resolve returns the referenced namespace's cache.
func (r *CacheRefResolver) Resolve() (cache.Cache, error) {
	return r.assistant.UseCacheRef(r.namespace)
}

func (r *CacheRefResolver) ResolvePending() error {
	_, err := r.Resolve()
	return err
}

func (r *CacheRefResolver) Describe() string {
	return fmt.Sprintf("%s -> %s", r.assistant.Namespace(), r.namespace)
}

// ResultMapResolver retries a result map declaration.
type ResultMapResolver struct {
	assistant     *Assistant
	id            string
	typ           reflect.Type
	extend        string
	discriminator *mapping.Discriminator
	mappings      []mapping.ResultMapping
	autoMapping   *bool
}

func NewResultMapResolver(assistant *Assistant, id string, typ reflect.Type, extend string, discriminator *mapping.Discriminator, mappings []mapping.ResultMapping, autoMapping *bool) *ResultMapResolver {
	return &ResultMapResolver{
		assistant:     assistant,
		id:            id,
		typ:           typ,
		extend:        extend,
		discriminator: discriminator,
		mappings:      mappings,
		autoMapping:   autoMapping,
	}
}

func (r *ResultMapResolver) Resolve() (*mapping.ResultMap, error) {
	return r.assistant.AddResultMap(r.id, r.typ, r.extend, r.discriminator, r.mappings, r.autoMapping)
}

func (r *ResultMapResolver) ResolvePending() error {
	_, err := r.Resolve()
	return err
}

func (r *ResultMapResolver) Describe() string {
	return r.assistant.Namespace() + "." + r.id
}

// StatementResolver retries a statement declaration.
type StatementResolver struct {
	assistant *Assistant
	spec      StatementSpec
}

func NewStatementResolver(assistant *Assistant, spec StatementSpec) *StatementResolver {
	return &StatementResolver{assistant: assistant, spec: spec}
}

func (r *StatementResolver) Resolve() (*mapping.MappedStatement, error) {
	return r.assistant.AddMappedStatement(r.spec)
}

func (r *StatementResolver) ResolvePending() error {
	_, err := r.Resolve()
	return err
}

func (r *StatementResolver) Describe() string {
	return r.assistant.Namespace() + "." + r.spec.ID
}

// MethodResolver retries the statement declared on one mapper field.
type MethodResolver struct {
	builder *AnnotationBuilder
	method  reflect.StructField
}

func NewMethodResolver(builder *AnnotationBuilder, method reflect.StructField) *MethodResolver {
	return &MethodResolver{builder: builder, method: method}
}

func (r *MethodResolver) Resolve() error {
	return r.builder.parseStatement(r.method)
}

func (r *MethodResolver) ResolvePending() error {
	return r.Resolve()
}

func (r *MethodResolver) Describe() string {
	return r.builder.assistant.Namespace() + "." + r.method.Name
}

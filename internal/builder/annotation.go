package builder

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/specialistvlad/gobatis/internal/config"
	"github.com/specialistvlad/gobatis/internal/ctxlog"
	"github.com/specialistvlad/gobatis/internal/mapping"
	"github.com/specialistvlad/gobatis/internal/typealias"
)

// Struct tags read from a mapper type.
const (
	tagNamespace  = "namespace"
	tagCache      = "cache"
	tagCacheRef   = "cacheRef"
	tagResultMap  = "resultMap"
	tagResultType = "resultType"
	tagFlushCache = "flushCache"
	tagUseCache   = "useCache"
	tagTimeout    = "timeout"
)

var commandTags = []struct {
	tag     string
	command mapping.CommandType
}{
	{"select", mapping.CommandSelect},
	{"insert", mapping.CommandInsert},
	{"update", mapping.CommandUpdate},
	{"delete", mapping.CommandDelete},
}

var errorType = reflect.TypeFor[error]()

// AnnotationBuilder registers the statements declared in the struct tags of a
// mapper type. A mapper is a struct whose exported func fields are its
// methods. Type-level options live on a blank field:
//
//	type UserMapper struct {
//		_ struct{} `namespace:"users" cache:"true"`
//
//		FindByID func(ctx context.Context, id int64) (*User, error) `select:"SELECT * FROM users WHERE id = ?"`
//		Count    func(ctx context.Context) (int64, error)
//	}
//
// Fields without a statement tag are expected to be declared in a mapper file
// for the same namespace.
type AnnotationBuilder struct {
	cfg       *config.Configuration
	typ       reflect.Type
	assistant *Assistant
}

func NewAnnotationBuilder(cfg *config.Configuration, typ reflect.Type) *AnnotationBuilder {
	return &AnnotationBuilder{
		cfg:       cfg,
		typ:       typ,
		assistant: NewAssistant(cfg, mapping.StructSource(typealias.QualifiedName(typ), "")),
	}
}

// MapperNamespace returns the namespace of a mapper type: the namespace tag
// of its blank field, or its qualified type name.
func MapperNamespace(typ reflect.Type) string {
	if ns := typeTag(typ, tagNamespace); ns != "" {
		return ns
	}
	return typealias.QualifiedName(typ)
}

func typeTag(typ reflect.Type, key string) string {
	for i := range typ.NumField() {
		f := typ.Field(i)
		if f.Name == "_" {
			if v, ok := f.Tag.Lookup(key); ok {
				return v
			}
		}
	}
	return ""
}

// Parse registers the mapper's cache and statements. Elements with missing
// references are queued on the configuration. Parsing a type twice is a
// no-op.
func (b *AnnotationBuilder) Parse(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	resource := "type " + typealias.QualifiedName(b.typ)
	if b.cfg.IsResourceLoaded(resource) {
		return nil
	}
	b.cfg.AddLoadedResource(resource)

	if err := b.assistant.SetNamespace(MapperNamespace(b.typ)); err != nil {
		return err
	}

	if err := b.parseCache(); err != nil {
		return err
	}

	for i := range b.typ.NumField() {
		field := b.typ.Field(i)
		if !field.IsExported() || field.Type.Kind() != reflect.Func {
			continue
		}
		err := b.parseStatement(field)
		switch {
		case err == nil:
		case errors.Is(err, config.ErrIncompleteElement):
			logger.Debug("Mapper method deferred.", "method", field.Name, "error", err)
			b.cfg.AddPending(config.PendingMethod, NewMethodResolver(b, field), err)
		default:
			return err
		}
	}

	logger.Debug("Parsed mapper type.", "type", typealias.QualifiedName(b.typ), "namespace", b.assistant.Namespace())
	return nil
}

func (b *AnnotationBuilder) parseCache() error {
	if enabled, _ := strconv.ParseBool(typeTag(b.typ, tagCache)); enabled {
		if _, err := b.assistant.UseNewCache(); err != nil {
			return err
		}
	}
	ref := typeTag(b.typ, tagCacheRef)
	if ref == "" {
		return nil
	}
	_, err := b.assistant.UseCacheRef(ref)
	if errors.Is(err, config.ErrIncompleteElement) {
		b.cfg.AddPending(config.PendingCacheRef, NewCacheRefResolver(b.assistant, ref), err)
		return nil
	}
	return err
}

// parseStatement registers the statement declared on field, if any.
func (b *AnnotationBuilder) parseStatement(field reflect.StructField) error {
	spec, ok, err := b.statementSpec(field)
	if err != nil || !ok {
		return err
	}
	_, err = b.assistant.AddMappedStatement(spec)
	return err
}

func (b *AnnotationBuilder) statementSpec(field reflect.StructField) (StatementSpec, bool, error) {
	spec := StatementSpec{ID: field.Name}
	found := 0
	for _, ct := range commandTags {
		if sql, ok := field.Tag.Lookup(ct.tag); ok {
			spec.CommandType = ct.command
			spec.SQL = sql
			found++
		}
	}
	switch {
	case found == 0:
		return spec, false, nil
	case found > 1:
		return spec, false, b.fieldError(field, "declares more than one statement")
	}

	spec.ResultMap = field.Tag.Get(tagResultMap)

	if name := field.Tag.Get(tagResultType); name != "" {
		t, err := b.cfg.Aliases.Resolve(name)
		if err != nil {
			return spec, false, b.fieldError(field, err.Error())
		}
		spec.ResultType = t
	} else if spec.CommandType == mapping.CommandSelect && spec.ResultMap == "" {
		spec.ResultType = ResultElementType(field.Type)
	}

	var err error
	if spec.FlushCache, err = boolTag(field, tagFlushCache); err != nil {
		return spec, false, b.fieldError(field, err.Error())
	}
	if spec.UseCache, err = boolTag(field, tagUseCache); err != nil {
		return spec, false, b.fieldError(field, err.Error())
	}
	if v := field.Tag.Get(tagTimeout); v != "" {
		if spec.Timeout, err = time.ParseDuration(v); err != nil {
			return spec, false, b.fieldError(field, err.Error())
		}
	}
	return spec, true, nil
}

func (b *AnnotationBuilder) fieldError(field reflect.StructField, msg string) error {
	return fmt.Errorf("%s: %s", mapping.StructSource(typealias.QualifiedName(b.typ), field.Name), msg)
}

func boolTag(field reflect.StructField, key string) (*bool, error) {
	v, ok := field.Tag.Lookup(key)
	if !ok {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s tag %q: %w", key, v, err)
	}
	return &parsed, nil
}

// ResultElementType returns the type a select mapped on a func of type ft
// produces per row: the first result with slices and pointers removed. A
// []byte result stays a scalar. It returns nil when ft has no value result.
func ResultElementType(ft reflect.Type) reflect.Type {
	if ft.Kind() != reflect.Func || ft.NumOut() == 0 || ft.Out(0) == errorType {
		return nil
	}
	t := ft.Out(0)
	if t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8 {
		t = t.Elem()
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

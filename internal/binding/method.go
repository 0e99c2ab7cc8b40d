package binding

import (
	"context"
	"fmt"
	"reflect"

	"github.com/specialistvlad/gobatis/internal/config"
	"github.com/specialistvlad/gobatis/internal/mapping"
	"github.com/specialistvlad/gobatis/internal/session"
	"github.com/specialistvlad/gobatis/internal/typealias"
)

var (
	errorType       = reflect.TypeFor[error]()
	contextType     = reflect.TypeFor[context.Context]()
	batchResultType = reflect.TypeFor[[]session.BatchResult]()
)

// signature is the shape of a mapper func: an optional leading
// context.Context, positional arguments, and either error or (value, error).
type signature struct {
	hasContext bool
	variadic   bool
	// out is the value result, nil for funcs returning only error.
	out reflect.Type
}

func parseSignature(ft reflect.Type) (signature, error) {
	if ft.Kind() != reflect.Func {
		return signature{}, fmt.Errorf("%s is not a func", ft)
	}
	n := ft.NumOut()
	if n == 0 || n > 2 || ft.Out(n-1) != errorType {
		return signature{}, fmt.Errorf("%s must return error or (value, error)", ft)
	}
	sig := signature{
		hasContext: ft.NumIn() > 0 && ft.In(0) == contextType,
		variadic:   ft.IsVariadic(),
	}
	if n == 2 {
		sig.out = ft.Out(0)
	}
	return sig, nil
}

// MapperMethod routes calls of one mapper field to its mapped statement.
type MapperMethod struct {
	Name      string
	Statement *mapping.MappedStatement
	sig       signature
}

// NewMapperMethod binds field of a mapper in namespace to the statement
// "<namespace>.<field>".
func NewMapperMethod(cfg *config.Configuration, mapperType reflect.Type, namespace string, field reflect.StructField) (*MapperMethod, error) {
	mapperName := typealias.QualifiedName(mapperType)
	sig, err := parseSignature(field.Type)
	if err != nil {
		return nil, &BindingError{Mapper: mapperName, Method: field.Name, Message: err.Error()}
	}

	id := namespace + "." + field.Name
	ms, err := cfg.MappedStatement(id)
	if err != nil {
		return nil, &BindingError{
			Mapper:  mapperName,
			Method:  field.Name,
			Message: fmt.Sprintf("invalid bound statement (not found): %s", id),
		}
	}

	if msg := checkResult(ms.CommandType, sig.out); msg != "" {
		return nil, &BindingError{Mapper: mapperName, Method: field.Name, Message: msg}
	}
	return &MapperMethod{Name: field.Name, Statement: ms, sig: sig}, nil
}

func checkResult(ct mapping.CommandType, out reflect.Type) string {
	switch ct {
	case mapping.CommandSelect:
		return ""
	case mapping.CommandInsert, mapping.CommandUpdate, mapping.CommandDelete:
		if out == nil || isInteger(out) || out.Kind() == reflect.Bool {
			return ""
		}
		return fmt.Sprintf("%s statements return a row count, cannot return %s", ct, out)
	case mapping.CommandFlush:
		if out == nil || out == batchResultType {
			return ""
		}
		return fmt.Sprintf("flush returns []session.BatchResult, cannot return %s", out)
	default:
		return fmt.Sprintf("unknown execution method for %s", ct)
	}
}

// Execute runs the statement and returns the value result, which is invalid
// for funcs returning only error.
func (m *MapperMethod) Execute(ctx context.Context, sess session.Session, args []any) (reflect.Value, error) {
	id := m.Statement.ID
	switch m.Statement.CommandType {
	case mapping.CommandInsert:
		n, err := sess.Insert(ctx, id, args...)
		return m.rowCount(n), err
	case mapping.CommandUpdate:
		n, err := sess.Update(ctx, id, args...)
		return m.rowCount(n), err
	case mapping.CommandDelete:
		n, err := sess.Delete(ctx, id, args...)
		return m.rowCount(n), err
	case mapping.CommandFlush:
		results, err := sess.FlushStatements(ctx)
		if err != nil || m.sig.out == nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(results), nil
	case mapping.CommandSelect:
		return m.selectResult(ctx, sess, args)
	}
	return reflect.Value{}, fmt.Errorf("unknown execution method for %s", id)
}

func (m *MapperMethod) selectResult(ctx context.Context, sess session.Session, args []any) (reflect.Value, error) {
	id := m.Statement.ID
	out := m.sig.out

	if out == nil || (out.Kind() == reflect.Slice && out.Elem().Kind() != reflect.Uint8) {
		list, err := sess.SelectList(ctx, id, args...)
		if err != nil || out == nil {
			return reflect.Value{}, err
		}
		slice := reflect.MakeSlice(out, 0, len(list))
		for _, item := range list {
			v, err := convertResult(item, out.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%s: %w", id, err)
			}
			slice = reflect.Append(slice, v)
		}
		return slice, nil
	}

	one, err := sess.SelectOne(ctx, id, args...)
	if err != nil {
		return reflect.Value{}, err
	}
	v, err := convertResult(one, out)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%s: %w", id, err)
	}
	return v, nil
}

func (m *MapperMethod) rowCount(n int64) reflect.Value {
	switch {
	case m.sig.out == nil:
		return reflect.Value{}
	case m.sig.out.Kind() == reflect.Bool:
		return reflect.ValueOf(n > 0).Convert(m.sig.out)
	default:
		return reflect.ValueOf(n).Convert(m.sig.out)
	}
}

// invoke adapts reflect.MakeFunc arguments to Execute and back.
func (m *MapperMethod) invoke(sess session.Session, in []reflect.Value) []reflect.Value {
	ctx := context.Background()
	params := in
	if m.sig.hasContext {
		if c, ok := in[0].Interface().(context.Context); ok && c != nil {
			ctx = c
		}
		params = in[1:]
	}

	args := make([]any, 0, len(params))
	for i, p := range params {
		if m.sig.variadic && i == len(params)-1 {
			for j := range p.Len() {
				args = append(args, p.Index(j).Interface())
			}
			continue
		}
		args = append(args, p.Interface())
	}

	v, err := m.Execute(ctx, sess, args)
	return results(m.sig, v, err)
}

func results(sig signature, v reflect.Value, err error) []reflect.Value {
	errValue := reflect.Zero(errorType)
	if err != nil {
		errValue = reflect.ValueOf(&err).Elem()
	}
	if sig.out == nil {
		return []reflect.Value{errValue}
	}
	if !v.IsValid() || err != nil {
		v = reflect.Zero(sig.out)
	}
	return []reflect.Value{v, errValue}
}

// convertResult adapts a session result to want: struct results arrive as
// pointers and are dereferenced for value results, scalar results are
// converted between numeric kinds.
func convertResult(item any, want reflect.Type) (reflect.Value, error) {
	if item == nil {
		return reflect.Zero(want), nil
	}
	v := reflect.ValueOf(item)
	t := v.Type()
	switch {
	case t.AssignableTo(want):
		return v, nil
	case t.Kind() == reflect.Pointer && t.Elem().AssignableTo(want):
		if v.IsNil() {
			return reflect.Zero(want), nil
		}
		return v.Elem(), nil
	case want.Kind() == reflect.Pointer && t.AssignableTo(want.Elem()):
		p := reflect.New(want.Elem())
		p.Elem().Set(v)
		return p, nil
	case isNumeric(t) && isNumeric(want):
		return v.Convert(want), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot return %s as %s", t, want)
}

func isInteger(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isNumeric(t reflect.Type) bool {
	return isInteger(t) || t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
}

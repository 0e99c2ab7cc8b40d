package localsession

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/specialistvlad/gobatis/internal/config"
	"github.com/specialistvlad/gobatis/internal/mapping"
	"github.com/specialistvlad/gobatis/internal/settings"
)

// columnTag names the column a struct field is auto-mapped from.
const columnTag = "db"

// row is one scanned result row. Column lookups ignore case.
type row struct {
	columns []string
	values  []any
	index   map[string]int
}

func newRow(columns []string, values []any) *row {
	r := &row{columns: columns, values: values, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		key := strings.ToUpper(c)
		if _, dup := r.index[key]; !dup {
			r.index[key] = i
		}
	}
	return r
}

func (r *row) get(column string) (any, bool) {
	i, ok := r.index[strings.ToUpper(column)]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// resultHandler turns the rows of one statement into values of its result
// map type.
type resultHandler struct {
	ctx context.Context
	cfg *config.Configuration
	ms  *mapping.MappedStatement
}

func newResultHandler(ctx context.Context, cfg *config.Configuration, ms *mapping.MappedStatement) *resultHandler {
	return &resultHandler{ctx: ctx, cfg: cfg, ms: ms}
}

func (h *resultHandler) handleRows(rows *sql.Rows) ([]any, error) {
	rm := h.ms.ResultMap()
	if rm == nil {
		return nil, fmt.Errorf("a query was run and no result map was found for statement %s; declare a result map or a result type", h.ms.ID)
	}
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", h.ms.ID, err)
	}

	out := make([]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row of %s: %w", h.ms.ID, err)
		}
		v, err := h.mapRow(newRow(columns, values), rm)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (h *resultHandler) mapRow(r *row, rm *mapping.ResultMap) (any, error) {
	rm, err := h.discriminate(r, rm)
	if err != nil {
		return nil, err
	}

	t := rm.Type
	switch {
	case t.Kind() == reflect.Map && t.Key().Kind() == reflect.String:
		return h.mapToMap(r, t)
	case t.Kind() == reflect.Struct && t != timeType:
		target := reflect.New(t)
		if _, err := h.applyResultMap(r, rm, target.Elem(), true); err != nil {
			return nil, err
		}
		return target.Interface(), nil
	default:
		if len(r.values) == 0 {
			return nil, fmt.Errorf("statement %s returned no columns", h.ms.ID)
		}
		v := reflect.New(t).Elem()
		if err := assign(v, r.values[0]); err != nil {
			return nil, fmt.Errorf("mapping column %s of %s: %w", r.columns[0], h.ms.ID, err)
		}
		return v.Interface(), nil
	}
}

func (h *resultHandler) mapToMap(r *row, t reflect.Type) (any, error) {
	m := reflect.MakeMapWithSize(t, len(r.columns))
	for i, c := range r.columns {
		v := reflect.New(t.Elem()).Elem()
		if err := assign(v, r.values[i]); err != nil {
			return nil, fmt.Errorf("mapping column %s of %s: %w", c, h.ms.ID, err)
		}
		m.SetMapIndex(reflect.ValueOf(c).Convert(t.Key()), v)
	}
	return m.Interface(), nil
}

// discriminate follows discriminator cases until a result map without a
// matching case is reached.
func (h *resultHandler) discriminate(r *row, rm *mapping.ResultMap) (*mapping.ResultMap, error) {
	visited := make(map[string]struct{})
	for rm.Discriminator != nil {
		if _, seen := visited[rm.ID]; seen {
			return rm, nil
		}
		visited[rm.ID] = struct{}{}

		v, ok := r.get(rm.Discriminator.Column)
		if !ok || v == nil {
			return rm, nil
		}
		key, err := discriminatorKey(v, rm.Discriminator.GoType)
		if err != nil {
			return nil, fmt.Errorf("discriminator of result map %s: column %s: %w", rm.ID, rm.Discriminator.Column, err)
		}
		id, ok := rm.Discriminator.Cases[key]
		if !ok {
			return rm, nil
		}
		next, err := h.cfg.ResultMap(id)
		if err != nil {
			return nil, fmt.Errorf("discriminator of result map %s: %w", rm.ID, err)
		}
		rm = next
	}
	return rm, nil
}

// discriminatorKey is the string form a column value is matched against the
// cases with. With goType set the value is converted to that type first, so
// 1.0 read for an int discriminator matches the case "1".
func discriminatorKey(v any, goType reflect.Type) (string, error) {
	if goType != nil {
		tmp := reflect.New(goType).Elem()
		if err := assign(tmp, v); err != nil {
			return "", err
		}
		v = tmp.Interface()
	}
	if text, ok := asText(v); ok {
		return text, nil
	}
	return fmt.Sprint(v), nil
}

// applyResultMap fills target from r. It reports whether any non-null value
// was stored. Unknown columns are reported only for the top-level object.
func (h *resultHandler) applyResultMap(r *row, rm *mapping.ResultMap, target reflect.Value, top bool) (bool, error) {
	found := false
	for _, m := range rm.Mappings {
		field := target.FieldByName(m.Property)
		if !field.IsValid() || !field.CanSet() {
			return false, fmt.Errorf("result map %s: type %s has no settable property '%s'", rm.ID, target.Type(), m.Property)
		}

		if m.NestedResultMapID != "" {
			ok, err := h.applyNested(r, m.NestedResultMapID, field)
			if err != nil {
				return false, fmt.Errorf("result map %s, property %s: %w", rm.ID, m.Property, err)
			}
			found = found || ok
			continue
		}

		v, ok := r.get(m.Column)
		if !ok {
			continue
		}
		if err := assignMapping(field, m, v); err != nil {
			return false, fmt.Errorf("result map %s: mapping column %s to %s: %w", rm.ID, m.Column, m.Property, err)
		}
		found = found || v != nil
	}

	if h.shouldAutoMap(rm, !top) {
		ok, err := h.autoMap(r, rm, target, top)
		if err != nil {
			return false, err
		}
		found = found || ok
	}
	return found, nil
}

func assignMapping(field reflect.Value, m mapping.ResultMapping, v any) error {
	if m.GoType == nil || m.GoType == field.Type() {
		return assign(field, v)
	}
	tmp := reflect.New(m.GoType).Elem()
	if err := assign(tmp, v); err != nil {
		return err
	}
	switch {
	case tmp.Type().AssignableTo(field.Type()):
		field.Set(tmp)
	case tmp.Type().ConvertibleTo(field.Type()):
		field.Set(tmp.Convert(field.Type()))
	default:
		return fmt.Errorf("type %s is not assignable to %s", m.GoType, field.Type())
	}
	return nil
}

// applyNested fills a struct or struct pointer property from the same row.
// The property stays unset when the nested map finds no values.
func (h *resultHandler) applyNested(r *row, id string, field reflect.Value) (bool, error) {
	nested, err := h.cfg.ResultMap(id)
	if err != nil {
		return false, err
	}
	if nested, err = h.discriminate(r, nested); err != nil {
		return false, err
	}

	t := field.Type()
	isPtr := t.Kind() == reflect.Pointer
	if isPtr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false, fmt.Errorf("nested result map %s needs a struct property, got %s", id, field.Type())
	}

	target := reflect.New(t)
	found, err := h.applyResultMap(r, nested, target.Elem(), false)
	if err != nil || !found {
		return false, err
	}
	if isPtr {
		field.Set(target)
	} else {
		field.Set(target.Elem())
	}
	return true, nil
}

// shouldAutoMap reports whether unmapped columns are auto-mapped onto rm.
// Nested result maps are auto-mapped only under FULL.
func (h *resultHandler) shouldAutoMap(rm *mapping.ResultMap, nested bool) bool {
	if rm.AutoMapping != nil {
		return *rm.AutoMapping
	}
	switch h.cfg.Settings.AutoMappingBehavior {
	case settings.AutoMappingNone:
		return false
	case settings.AutoMappingPartial:
		return !nested && !rm.HasNestedResultMaps()
	default:
		return true
	}
}

func (h *resultHandler) autoMap(r *row, rm *mapping.ResultMap, target reflect.Value, top bool) (bool, error) {
	explicit := rm.MappedProperties()
	underscore := h.cfg.Settings.MapUnderscoreToCamelCase
	behavior := h.cfg.Settings.AutoMappingUnknownColumnBehavior
	found := false

	for i, column := range r.columns {
		if rm.IsColumnMapped(column) {
			continue
		}
		field, name, ok := findField(target, column, underscore)
		if ok {
			if _, mapped := explicit[name]; mapped {
				continue
			}
		}
		v := r.values[i]

		if !ok {
			if top {
				if err := behavior.DoAction(h.ctx, h.ms.ID, column, propertyName(column, underscore), nil); err != nil {
					return false, err
				}
			}
			continue
		}
		if !assignable(field.Type(), v) {
			if top {
				if err := behavior.DoAction(h.ctx, h.ms.ID, column, name, field.Type()); err != nil {
					return false, err
				}
			}
			continue
		}
		if err := assign(field, v); err != nil {
			return false, err
		}
		found = found || v != nil
	}
	return found, nil
}

func propertyName(column string, underscore bool) string {
	if underscore {
		return strings.ReplaceAll(column, "_", "")
	}
	return column
}

// findField finds the exported field a column auto-maps to: a field whose
// db tag equals the column, or whose name equals the column ignoring case.
// With underscore mapping, underscores in the column are ignored.
func findField(target reflect.Value, column string, underscore bool) (reflect.Value, string, bool) {
	name := propertyName(column, underscore)
	for _, sf := range reflect.VisibleFields(target.Type()) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		tag := sf.Tag.Get(columnTag)
		if tag == "-" {
			continue
		}
		matched := strings.EqualFold(tag, column)
		if tag == "" {
			matched = strings.EqualFold(sf.Name, name)
		}
		if !matched {
			continue
		}
		f, err := target.FieldByIndexErr(sf.Index)
		if err != nil || !f.CanSet() {
			continue
		}
		return f, sf.Name, true
	}
	return reflect.Value{}, "", false
}

package localsession

import (
	"database/sql"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

var (
	scannerType = reflect.TypeFor[sql.Scanner]()
	timeType    = reflect.TypeFor[time.Time]()
)

// Layouts tried when a time is stored as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// assign stores a driver value in dst, converting between the value kinds
// database drivers return and the common Go field kinds. A nil value stores
// the zero value.
func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	if dst.CanAddr() && dst.Addr().Type().Implements(scannerType) {
		return dst.Addr().Interface().(sql.Scanner).Scan(v)
	}
	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), v); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}

	src := reflect.ValueOf(v)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}

	text, isText := asText(v)
	switch dst.Kind() {
	case reflect.String:
		if isText {
			dst.SetString(text)
			return nil
		}
	case reflect.Bool:
		switch {
		case isInt(src):
			dst.SetBool(src.Int() != 0)
			return nil
		case isText:
			b, err := strconv.ParseBool(text)
			if err != nil {
				return err
			}
			dst.SetBool(b)
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt(src, text, isText)
		if err != nil {
			return err
		}
		if dst.OverflowInt(n) {
			return fmt.Errorf("value %d overflows %s", n, dst.Type())
		}
		dst.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toInt(src, text, isText)
		if err != nil {
			return err
		}
		if n < 0 || dst.OverflowUint(uint64(n)) {
			return fmt.Errorf("value %d overflows %s", n, dst.Type())
		}
		dst.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		switch {
		case isInt(src):
			dst.SetFloat(float64(src.Int()))
			return nil
		case src.Kind() == reflect.Float64 || src.Kind() == reflect.Float32:
			dst.SetFloat(src.Float())
			return nil
		case isText:
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return err
			}
			dst.SetFloat(f)
			return nil
		}
	case reflect.Slice:
		if dst.Type().Elem().Kind() == reflect.Uint8 && isText {
			dst.SetBytes([]byte(text))
			return nil
		}
	case reflect.Struct:
		if dst.Type() == timeType && isText {
			t, err := parseTime(text)
			if err != nil {
				return err
			}
			dst.Set(reflect.ValueOf(t))
			return nil
		}
	}
	return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
}

// assignable reports whether assign would accept v for a value of type t.
func assignable(t reflect.Type, v any) bool {
	return assign(reflect.New(t).Elem(), v) == nil
}

func asText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	}
	return "", false
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func toInt(src reflect.Value, text string, isText bool) (int64, error) {
	switch {
	case isInt(src):
		return src.Int(), nil
	case src.Kind() == reflect.Bool:
		if src.Bool() {
			return 1, nil
		}
		return 0, nil
	case src.Kind() == reflect.Float64 || src.Kind() == reflect.Float32:
		f := src.Float()
		if f != float64(int64(f)) {
			return 0, fmt.Errorf("value %v is not a whole number", f)
		}
		return int64(f), nil
	case isText:
		return strconv.ParseInt(text, 10, 64)
	}
	return 0, fmt.Errorf("cannot convert %s to an integer", src.Type())
}

func parseTime(text string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a time", text)
}

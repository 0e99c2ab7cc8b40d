package app

import (
	"fmt"
	"reflect"

	"github.com/davecgh/go-spew/spew"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// printResults writes one line per row, or a full structural dump per row
// when Dump is set.
func (a *App) printResults(results []any) error {
	for _, r := range results {
		if a.config.Dump {
			dumper.Fdump(a.outW, r)
			continue
		}
		if _, err := fmt.Fprintf(a.outW, "%+v\n", deref(r)); err != nil {
			return err
		}
	}
	return nil
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return v
}

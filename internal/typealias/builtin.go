package typealias

import (
	"database/sql"
	"iter"
	"math/big"
	"reflect"
	"time"
)

type builtinAlias struct {
	alias string
	typ   reflect.Type
}

// scalarAliases are registered three ways: as-is, with a `[]` suffix for the
// slice type, and with a `_` prefix.
var scalarAliases = []builtinAlias{
	{"byte", reflect.TypeFor[byte]()},
	{"long", reflect.TypeFor[int64]()},
	{"short", reflect.TypeFor[int16]()},
	{"int", reflect.TypeFor[int]()},
	{"integer", reflect.TypeFor[int]()},
	{"double", reflect.TypeFor[float64]()},
	{"float", reflect.TypeFor[float32]()},
	{"boolean", reflect.TypeFor[bool]()},
}

// objectAliases are registered as-is and with a `[]` suffix.
var objectAliases = []builtinAlias{
	{"date", reflect.TypeFor[time.Time]()},
	{"decimal", reflect.TypeFor[*big.Float]()},
	{"bigdecimal", reflect.TypeFor[*big.Float]()},
	{"biginteger", reflect.TypeFor[*big.Int]()},
	{"object", reflect.TypeFor[any]()},
}

var plainAliases = []builtinAlias{
	{"string", reflect.TypeFor[string]()},
	{"bool", reflect.TypeFor[bool]()},
	{"map", reflect.TypeFor[map[string]any]()},
	{"hashmap", reflect.TypeFor[map[string]any]()},
	{"list", reflect.TypeFor[[]any]()},
	{"arraylist", reflect.TypeFor[[]any]()},
	{"collection", reflect.TypeFor[[]any]()},
	{"iterator", reflect.TypeFor[iter.Seq[any]]()},
	{"ResultSet", reflect.TypeFor[*sql.Rows]()},
}

func (r *Registry) registerBuiltins() {
	add := func(alias string, t reflect.Type) {
		r.aliases[normalize(alias)] = t
	}
	for _, a := range plainAliases {
		add(a.alias, a.typ)
	}
	for _, a := range scalarAliases {
		add(a.alias, a.typ)
		add(a.alias+"[]", reflect.SliceOf(a.typ))
		add("_"+a.alias, a.typ)
		add("_"+a.alias+"[]", reflect.SliceOf(a.typ))
	}
	for _, a := range objectAliases {
		add(a.alias, a.typ)
		add(a.alias+"[]", reflect.SliceOf(a.typ))
	}
}

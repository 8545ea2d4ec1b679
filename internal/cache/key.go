package cache

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"clubdir/internal/store"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// noScope stands in for an unscoped read so that scope prefixes stay unambiguous.
const noScope = "_"

// OpKind names the store operation behind a cache entry.
type OpKind string

const (
	OpFirstPage OpKind = "firstPage"
	OpAll       OpKind = "all"
	OpFind      OpKind = "find"
	OpCount     OpKind = "count"
)

// Key builds table::scope::op::hash(params).
func Key(table, scope string, op OpKind, params string) string {
	return strings.Join([]string{
		table,
		scopeSegment(scope),
		string(op),
		strconv.FormatUint(xxhash.Sum64String(params), 16),
	}, KeySeparator)
}

// SerializeQuery renders every parameter that affects a listing's result,
// in a fixed order.
func SerializeQuery(q store.Query) string {
	var b strings.Builder
	b.WriteString("filter=")
	b.WriteString(store.FormulaOf(q.Filter))
	b.WriteString("|sort=")
	for i, s := range q.Sort {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s.Field)
		b.WriteByte(':')
		b.WriteString(s.Direction())
	}
	b.WriteString("|max=")
	b.WriteString(strconv.Itoa(q.MaxRecords))
	b.WriteString("|fields=")
	b.WriteString(strings.Join(q.Fields, ","))
	return b.String()
}

func tablePrefix(table string) string {
	return table + KeySeparator
}

func scopePrefix(table, scope string) string {
	return table + KeySeparator + scopeSegment(scope) + KeySeparator
}

func scopeSegment(scope string) string {
	if scope == "" {
		return noScope
	}
	return scope
}

package pgstore

import (
	"fmt"
	"strconv"
	"strings"

	"clubdir/internal/store"
)

type builder struct {
	args []any
}

func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// BuildSelect translates a query into SQL over the records table.
// A limit of zero means unbounded.
func BuildSelect(table string, q store.Query, limit int) (string, []any, error) {
	b := &builder{}

	var sql strings.Builder
	sql.WriteString("SELECT id, fields, created_at FROM records WHERE table_name = ")
	sql.WriteString(b.arg(table))

	if q.Filter != nil {
		where, err := b.where(q.Filter)
		if err != nil {
			return "", nil, err
		}
		sql.WriteString(" AND ")
		sql.WriteString(where)
	}

	sql.WriteString(" ORDER BY ")
	for _, s := range q.Sort {
		sql.WriteString("fields->>(" + b.arg(s.Field) + "::text) ")
		if s.Desc {
			sql.WriteString("DESC NULLS LAST, ")
		} else {
			sql.WriteString("ASC NULLS LAST, ")
		}
	}
	sql.WriteString("created_at, id")

	if limit > 0 {
		sql.WriteString(" LIMIT ")
		sql.WriteString(b.arg(limit))
	}

	return sql.String(), b.args, nil
}

func (b *builder) where(f store.Filter) (string, error) {
	switch f := f.(type) {
	case store.EqFilter:
		col := "COALESCE(fields->>(" + b.arg(f.Field) + "::text), '')"
		if f.Fold {
			col = "LOWER(TRIM(" + col + "))"
		}
		return col + " = " + b.arg(f.Value), nil
	case store.AndFilter:
		return b.join(f, " AND ", "TRUE")
	case store.OrFilter:
		return b.join(f, " OR ", "FALSE")
	default:
		return "", fmt.Errorf("unsupported filter %T", f)
	}
}

func (b *builder) join(terms []store.Filter, op, empty string) (string, error) {
	if len(terms) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		p, err := b.where(t)
		if err != nil {
			return "", err
		}
		parts = append(parts, p)
	}
	return "(" + strings.Join(parts, op) + ")", nil
}

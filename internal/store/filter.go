package store

import (
	"strings"
)

// Filter is a typed row predicate. Formula renders it in the hosted store's
// formula language; Match evaluates it in-process.
type Filter interface {
	Formula() string
	Match(Fields) bool
}

// EqFilter matches rows whose field equals Value. With Fold set the stored
// value is trimmed and lower-cased before comparison.
type EqFilter struct {
	Field string
	Value string
	Fold  bool
}

// Eq matches {field} = "value".
func Eq(field, value string) EqFilter {
	return EqFilter{Field: field, Value: value}
}

// EqFold matches LOWER(TRIM({field})) = "value".
func EqFold(field, value string) EqFilter {
	return EqFilter{Field: field, Value: strings.ToLower(strings.TrimSpace(value)), Fold: true}
}

func (f EqFilter) Formula() string {
	if f.Fold {
		return "LOWER(TRIM(" + fieldRef(f.Field) + ")) = " + quote(f.Value)
	}
	return fieldRef(f.Field) + " = " + quote(f.Value)
}

func (f EqFilter) Match(fields Fields) bool {
	v := fields.String(f.Field)
	if f.Fold {
		v = strings.ToLower(strings.TrimSpace(v))
	}
	return v == f.Value
}

// AndFilter matches when every term matches. No terms matches everything.
type AndFilter []Filter

// And combines terms with AND.
func And(terms ...Filter) AndFilter {
	return AndFilter(terms)
}

func (a AndFilter) Formula() string {
	if len(a) == 0 {
		return "TRUE()"
	}
	return "AND(" + joinFormulas(a) + ")"
}

func (a AndFilter) Match(fields Fields) bool {
	for _, t := range a {
		if !t.Match(fields) {
			return false
		}
	}
	return true
}

// OrFilter matches when any term matches. No terms matches nothing.
type OrFilter []Filter

// Or combines terms with OR.
func Or(terms ...Filter) OrFilter {
	return OrFilter(terms)
}

// AnyOf matches rows whose field equals one of values.
func AnyOf(field string, values []string) OrFilter {
	terms := make([]Filter, 0, len(values))
	for _, v := range values {
		terms = append(terms, Eq(field, v))
	}
	return OrFilter(terms)
}

func (o OrFilter) Formula() string {
	if len(o) == 0 {
		return "FALSE()"
	}
	return "OR(" + joinFormulas(o) + ")"
}

func (o OrFilter) Match(fields Fields) bool {
	for _, t := range o {
		if t.Match(fields) {
			return true
		}
	}
	return false
}

// FormulaOf renders f, treating nil as "no filter".
func FormulaOf(f Filter) string {
	if f == nil {
		return ""
	}
	return f.Formula()
}

func joinFormulas(terms []Filter) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.Formula()
	}
	return strings.Join(parts, ", ")
}

func fieldRef(name string) string {
	return "{" + strings.ReplaceAll(name, "}", `\}`) + "}"
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}

package remotestore

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"
)

// Filter is one PostgREST row filter.
type Filter struct {
	Column string
	Op     string
	Value  string
	values []string
}

func Eq(column string, v any) Filter  { return Filter{Column: column, Op: "eq", Value: format(v)} }
func Neq(column string, v any) Filter { return Filter{Column: column, Op: "neq", Value: format(v)} }

func In(column string, vs ...any) Filter {
	return Filter{Column: column, Op: "in", Value: list(vs), values: formatAll(vs)}
}

func NotIn(column string, vs ...any) Filter {
	return Filter{Column: column, Op: "not.in", Value: list(vs), values: formatAll(vs)}
}

// Or matches rows satisfying any of the given filters.
func Or(fs ...Filter) Filter {
	parts := make([]string, len(fs))
	for i, f := range fs {
		v := f.Value
		if len(f.values) == 0 {
			v = quote(v)
		}
		parts[i] = f.Column + "." + f.Op + "." + v
	}
	return Filter{Column: "or", Op: "or", Value: strings.Join(parts, ",")}
}

func (f Filter) apply(fb *postgrest.FilterBuilder) *postgrest.FilterBuilder {
	switch f.Op {
	case "eq":
		return fb.Eq(f.Column, f.Value)
	case "neq":
		return fb.Neq(f.Column, f.Value)
	case "in":
		return fb.In(f.Column, f.values)
	case "not.in":
		return fb.Not(f.Column, "in", f.Value)
	case "or":
		return fb.Or(f.Value, "")
	default:
		return fb.Filter(f.Column, f.Op, f.Value)
	}
}

// Order sorts the result by a column.
type Order struct {
	Column string
	Desc   bool
}

// Query selects rows from a table.
type Query struct {
	Columns string
	Filters []Filter
	Order   []Order
	Limit   int
}

func (q Query) columns() string {
	if q.Columns == "" {
		return "*"
	}
	return q.Columns
}

func (q Query) apply(fb *postgrest.FilterBuilder) *postgrest.FilterBuilder {
	fb = applyFilters(fb, q.Filters)
	for _, o := range q.Order {
		fb = fb.Order(o.Column, &postgrest.OrderOpts{Ascending: !o.Desc})
	}
	if q.Limit > 0 {
		fb = fb.Limit(q.Limit, "")
	}
	return fb
}

func applyFilters(fb *postgrest.FilterBuilder, fs []Filter) *postgrest.FilterBuilder {
	for _, f := range fs {
		fb = f.apply(fb)
	}
	return fb
}

func format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return "null"
	default:
		return fmt.Sprint(x)
	}
}

func formatAll(vs []any) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = format(v)
	}
	return out
}

func list(vs []any) string {
	parts := formatAll(vs)
	for i, p := range parts {
		parts[i] = quote(p)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// quote wraps values that would break PostgREST's list syntax.
func quote(s string) string {
	if strings.ContainsAny(s, ",.:()\" ") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}

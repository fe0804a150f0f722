package repository

import (
	"fmt"
	"net/url"
	"strings"
)

// SQLFilter accumulates WHERE clauses with positional pgx arguments.
type SQLFilter struct {
	clauses []string
	args    []any
}

// Eq adds column = value.
func (f *SQLFilter) Eq(column string, value any) {
	f.add(column, "=", value)
}

// Gte adds column >= value.
func (f *SQLFilter) Gte(column, value string) {
	f.add(column, ">=", value)
}

// Lte adds column <= value.
func (f *SQLFilter) Lte(column, value string) {
	f.add(column, "<=", value)
}

func (f *SQLFilter) add(column, op string, value any) {
	f.args = append(f.args, value)
	f.clauses = append(f.clauses, fmt.Sprintf("%s %s $%d", column, op, len(f.args)))
}

// Where renders " WHERE ..." or "" when no clause was added.
func (f *SQLFilter) Where() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

// Args returns the positional arguments in clause order.
func (f *SQLFilter) Args() []any {
	return f.args
}

// RESTFilter builds PostgREST horizontal filters (column=op.value).
type RESTFilter struct {
	values url.Values
}

// NewRESTFilter returns an empty filter.
func NewRESTFilter() *RESTFilter {
	return &RESTFilter{values: url.Values{}}
}

// Eq adds column=eq.value.
func (f *RESTFilter) Eq(column, value string) {
	f.values.Add(column, "eq."+value)
}

// Gte adds column=gte.value.
func (f *RESTFilter) Gte(column, value string) {
	f.values.Add(column, "gte."+value)
}

// Lte adds column=lte.value.
func (f *RESTFilter) Lte(column, value string) {
	f.values.Add(column, "lte."+value)
}

// Set replaces a non-filter parameter such as select, order or limit.
func (f *RESTFilter) Set(key, value string) {
	f.values.Set(key, value)
}

// Values returns the accumulated query parameters.
func (f *RESTFilter) Values() url.Values {
	return f.values
}

// Package row provides a read-only view over a single query result record.
package row

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Null is returned by Row.Get when a column is absent or holds SQL NULL.
var Null = Value{}

// Value is a single column value. The zero Value is the null sentinel.
type Value struct {
	raw   interface{}
	valid bool
}

// IsNull reports whether the value is the null sentinel.
func (v Value) IsNull() bool {
	return !v.valid
}

// Raw returns the underlying driver value, or nil for null.
func (v Value) Raw() interface{} {
	return v.raw
}

// Text returns the value when it is a string. Values of any other type
// are never converted.
func (v Value) Text() (string, bool) {
	if !v.valid {
		return "", false
	}

	s, ok := v.raw.(string)

	return s, ok
}

// String formats the value for display.
func (v Value) String() string {
	if !v.valid {
		return "null"
	}

	switch val := v.raw.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Row is an immutable result record with named-column lookup.
type Row struct {
	columns []string
	values  map[string]Value
}

// New builds a row from ordered column names and their scanned values.
// Extra values without a column name are dropped.
func New(columns []string, values []interface{}) *Row {
	r := &Row{
		columns: make([]string, 0, len(columns)),
		values:  make(map[string]Value, len(columns)),
	}

	for i, col := range columns {
		var raw interface{}
		if i < len(values) {
			raw = values[i]
		}

		if _, seen := r.values[col]; !seen {
			r.columns = append(r.columns, col)
		}

		r.values[col] = valueOf(raw)
	}

	return r
}

// FromMap builds a row from a column map. Columns are ordered by name.
func FromMap(m map[string]interface{}) *Row {
	columns := make([]string, 0, len(m))
	for col := range m {
		columns = append(columns, col)
	}

	sort.Strings(columns)

	values := make([]interface{}, len(columns))
	for i, col := range columns {
		values[i] = m[col]
	}

	return New(columns, values)
}

// Get returns the value stored for column, or Null.
func (r *Row) Get(column string) Value {
	if r == nil {
		return Null
	}

	v, ok := r.values[column]
	if !ok {
		return Null
	}

	return v
}

// Columns returns the column names in result order.
func (r *Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)

	return out
}

// Map returns the raw values keyed by column. Nulls map to nil.
func (r *Row) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(r.columns))
	for _, col := range r.columns {
		out[col] = r.values[col].raw
	}

	return out
}

// Equal reports whether both rows hold the same columns and values.
func (r *Row) Equal(other *Row) bool {
	if r == nil || other == nil {
		return r == other
	}

	if len(r.columns) != len(other.columns) {
		return false
	}

	for i, col := range r.columns {
		if other.columns[i] != col {
			return false
		}

		a, b := r.values[col], other.values[col]
		if a.valid != b.valid || !reflect.DeepEqual(a.raw, b.raw) {
			return false
		}
	}

	return true
}

// String renders the row as {col:value, ...}.
func (r *Row) String() string {
	parts := make([]string, 0, len(r.columns))
	for _, col := range r.columns {
		parts = append(parts, col+":"+r.values[col].String())
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// valueOf normalises a scanned driver value.
func valueOf(raw interface{}) Value {
	if raw == nil {
		return Null
	}

	switch v := raw.(type) {
	case []byte:
		return Value{raw: string(v), valid: true}
	case string, bool, int64, float64, time.Time:
		return Value{raw: v, valid: true}
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return Null
		}

		return valueOf(rv.Elem().Interface())
	}

	if valuer, ok := raw.(driver.Valuer); ok {
		inner, err := valuer.Value()
		if err != nil || inner == nil {
			return Null
		}

		if _, nested := inner.(driver.Valuer); nested {
			return Value{raw: inner, valid: true}
		}

		return valueOf(inner)
	}

	return Value{raw: raw, valid: true}
}

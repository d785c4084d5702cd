// Package result holds query results in memory: an ordered set of typed
// columns and the rows read for them.
package result

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Konsultn-Engineering/sqlib/utils"
	"github.com/shopspring/decimal"
)

var (
	// ErrArityMismatch is returned when a row's value count disagrees with
	// the declared columns.
	ErrArityMismatch = errors.New("arity mismatch")
	// ErrColumnNotFound is returned when a column lookup by name or index fails.
	ErrColumnNotFound = errors.New("column not found")
)

// ColumnType describes one column as reported by the driver.
type ColumnType struct {
	Name string
	// DatabaseType is the driver's type name, e.g. "INTEGER" or "int8".
	DatabaseType string
	// ScanType is the Go type the driver scans the column into. May be nil.
	ScanType reflect.Type
}

// ResultMap is an in-memory table. Headers and types are fixed at
// construction; rows are appended with AddResult.
type ResultMap struct {
	headers []string
	types   []ColumnType
	rows    []*Result
}

// NewResultMap creates an empty result map. types may be nil, otherwise it
// must be parallel to headers.
func NewResultMap(headers []string, types []ColumnType) (*ResultMap, error) {
	if types != nil && len(types) != len(headers) {
		return nil, fmt.Errorf("result: %d column types for %d headers: %w", len(types), len(headers), ErrArityMismatch)
	}
	h := make([]string, len(headers))
	copy(h, headers)
	t := make([]ColumnType, len(headers))
	if types != nil {
		copy(t, types)
	} else {
		for i, name := range h {
			t[i] = ColumnType{Name: name}
		}
	}
	return &ResultMap{headers: h, types: t}, nil
}

// AddResult appends a row. The value count must equal the header count.
func (m *ResultMap) AddResult(values ...any) (*Result, error) {
	if len(values) != len(m.headers) {
		return nil, fmt.Errorf("result: row has %d values for %d columns: %w", len(values), len(m.headers), ErrArityMismatch)
	}
	v := make([]any, len(values))
	copy(v, values)
	r := &Result{owner: m, values: v}
	m.rows = append(m.rows, r)
	return r, nil
}

// Headers returns a copy of the column names.
func (m *ResultMap) Headers() []string {
	h := make([]string, len(m.headers))
	copy(h, m.headers)
	return h
}

// Types returns a copy of the column types, parallel to Headers.
func (m *ResultMap) Types() []ColumnType {
	t := make([]ColumnType, len(m.types))
	copy(t, m.types)
	return t
}

// Rows returns the rows in insertion order.
func (m *ResultMap) Rows() []*Result {
	r := make([]*Result, len(m.rows))
	copy(r, m.rows)
	return r
}

func (m *ResultMap) Len() int { return len(m.rows) }

// First returns the first row, or false when the map is empty.
func (m *ResultMap) First() (*Result, bool) {
	if len(m.rows) == 0 {
		return nil, false
	}
	return m.rows[0], true
}

// IndexOf resolves a column name case-insensitively.
func (m *ResultMap) IndexOf(name string) (int, error) {
	for i, h := range m.headers {
		if strings.EqualFold(h, name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("result: column %q: %w", name, ErrColumnNotFound)
}

// Result is one row of a ResultMap.
type Result struct {
	owner  *ResultMap
	values []any
}

// Values returns a copy of the row's values in column order.
func (r *Result) Values() []any {
	v := make([]any, len(r.values))
	copy(v, r.values)
	return v
}

// Get returns the value of the column called name, matched case-insensitively.
func (r *Result) Get(name string) (any, error) {
	i, err := r.owner.IndexOf(name)
	if err != nil {
		return nil, err
	}
	return r.values[i], nil
}

// At returns the value at column index i.
func (r *Result) At(i int) (any, error) {
	if i < 0 || i >= len(r.values) {
		return nil, fmt.Errorf("result: column index %d of %d: %w", i, len(r.values), ErrColumnNotFound)
	}
	return r.values[i], nil
}

// Assign stores the named column into dst, a non-nil pointer, converting
// between compatible types.
func (r *Result) Assign(name string, dst any) error {
	v, err := r.Get(name)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("result: destination for %q must be a non-nil pointer", name)
	}
	if err := utils.Assign(rv.Elem(), v); err != nil {
		return fmt.Errorf("result: column %q: %w", name, err)
	}
	return nil
}

// Value reads the named column of r as a T.
func Value[T any](r *Result, name string) (T, error) {
	var out T
	err := r.Assign(name, &out)
	return out, err
}

func (r *Result) String(name string) (string, error) { return Value[string](r, name) }

func (r *Result) Int64(name string) (int64, error) { return Value[int64](r, name) }

func (r *Result) Float64(name string) (float64, error) { return Value[float64](r, name) }

// Decimal reads NUMERIC and DECIMAL columns without going through float64.
func (r *Result) Decimal(name string) (decimal.Decimal, error) {
	return Value[decimal.Decimal](r, name)
}

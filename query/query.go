// Package query renders single-table SELECT, UPDATE, DELETE and INSERT
// statements and hands them to a database.Database.
//
// Query objects are built fluently and finished by Execute, which renders the
// statement and runs it once. Nothing is retried.
package query

import (
	"errors"
	"strings"

	"github.com/Konsultn-Engineering/sqlib/ast"
	"github.com/Konsultn-Engineering/sqlib/database"
	"github.com/Konsultn-Engineering/sqlib/visitor"
)

var (
	// ErrEmptyUpdate is returned by an Update without assignments.
	ErrEmptyUpdate = errors.New("query: update has no fields to set")
	// ErrEmptyInsert is returned by an Insert without value rows.
	ErrEmptyInsert = errors.New("query: insert has no values")
	// ErrReturningUnsupported is returned by ExecuteReturning when the
	// dialect has no RETURNING clause or no columns were requested.
	ErrReturningUnsupported = errors.New("query: RETURNING not available")
)

// statement holds what every query object shares.
type statement struct {
	db    database.Database
	table string
}

// render runs fn with a fresh visitor and returns the SQL it wrote along with
// the bound parameters.
func (s statement) render(fn func(v *visitor.SQLVisitor, sb *strings.Builder) error) (string, *database.Parameters, error) {
	v := visitor.NewSQLVisitor(s.db.Dialect(), nil)
	defer v.Release()

	var sb strings.Builder
	if err := fn(v, &sb); err != nil {
		return "", nil, err
	}
	return sb.String(), v.Params(), nil
}

// writeWhere appends " WHERE <conds>" unless conds render to nothing.
func writeWhere(v *visitor.SQLVisitor, sb *strings.Builder, conds []ast.Condition) error {
	where, err := v.Build(conds)
	if err != nil {
		return err
	}
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	return nil
}

func quoteAll(v *visitor.SQLVisitor, fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = v.Quote(f)
	}
	return strings.Join(quoted, ", ")
}

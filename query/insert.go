package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/Konsultn-Engineering/sqlib/ast"
	"github.com/Konsultn-Engineering/sqlib/database"
	"github.com/Konsultn-Engineering/sqlib/result"
	"github.com/Konsultn-Engineering/sqlib/visitor"
)

// Insert renders `INSERT INTO <table> [(f1, f2)] VALUES (...), (...)`.
type Insert struct {
	statement

	fields    []string
	rows      [][]any
	returning []string
}

// NewInsert inserts into fields of table. Without fields the rows are
// inserted positionally.
func NewInsert(db database.Database, table string, fields ...string) *Insert {
	return &Insert{
		statement: statement{db: db, table: table},
		fields:    append([]string(nil), fields...),
	}
}

// Values appends one row. nil is written as NULL, an ast.Value according to
// its format, anything else is bound as a parameter.
func (i *Insert) Values(values ...any) *Insert {
	i.rows = append(i.rows, append([]any(nil), values...))
	return i
}

// Returning asks the statement to return fields of the inserted rows. It is
// only rendered for dialects supporting RETURNING.
func (i *Insert) Returning(fields ...string) *Insert {
	i.returning = append(i.returning, fields...)
	return i
}

func (i *Insert) Build() (string, *database.Parameters, error) {
	if len(i.rows) == 0 {
		return "", nil, ErrEmptyInsert
	}
	if len(i.fields) > 0 {
		for n, row := range i.rows {
			if len(row) != len(i.fields) {
				return "", nil, fmt.Errorf("query: insert row %d has %d values for %d fields: %w",
					n, len(row), len(i.fields), result.ErrArityMismatch)
			}
		}
	}

	return i.render(func(v *visitor.SQLVisitor, sb *strings.Builder) error {
		sb.WriteString("INSERT INTO ")
		sb.WriteString(v.Quote(i.table))
		if len(i.fields) > 0 {
			sb.WriteString(" (")
			sb.WriteString(quoteAll(v, i.fields))
			sb.WriteByte(')')
		}
		sb.WriteString(" VALUES ")
		for n, row := range i.rows {
			if n > 0 {
				sb.WriteString(", ")
			}
			sb.WriteByte('(')
			for k, val := range row {
				if k > 0 {
					sb.WriteString(", ")
				}
				if val == nil {
					sb.WriteString("NULL")
					continue
				}
				rendered, err := v.Operand(val, ast.FormatBindValue)
				if err != nil {
					return err
				}
				sb.WriteString(rendered)
			}
			sb.WriteByte(')')
		}
		if len(i.returning) > 0 && i.db.Dialect().SupportsReturning() {
			sb.WriteString(" RETURNING ")
			sb.WriteString(quoteAll(v, i.returning))
		}
		return nil
	})
}

// Execute runs the insert. RETURNING columns, if any, are discarded.
func (i *Insert) Execute(ctx context.Context) (database.Result, error) {
	sql, params, err := i.Build()
	if err != nil {
		return nil, err
	}
	return i.db.ExecuteUpdate(ctx, sql, params)
}

// ExecuteReturning runs the insert and returns the RETURNING columns.
func (i *Insert) ExecuteReturning(ctx context.Context) (*result.ResultMap, error) {
	if len(i.returning) == 0 || !i.db.Dialect().SupportsReturning() {
		return nil, ErrReturningUnsupported
	}
	sql, params, err := i.Build()
	if err != nil {
		return nil, err
	}
	return i.db.ExecuteQuery(ctx, sql, params)
}

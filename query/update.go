package query

import (
	"context"
	"strings"

	"github.com/Konsultn-Engineering/sqlib/ast"
	"github.com/Konsultn-Engineering/sqlib/builder"
	"github.com/Konsultn-Engineering/sqlib/database"
	"github.com/Konsultn-Engineering/sqlib/visitor"
)

// FieldUpdate is one assignment of an UPDATE's SET list.
type FieldUpdate struct {
	Field  string
	Value  any
	Format ast.Format
}

// Update renders `UPDATE <table> SET f1=v1, f2=v2 [WHERE ...]`.
type Update struct {
	builder.Conditional[*Update]
	statement

	sets []FieldUpdate
}

func NewUpdate(db database.Database, table string) *Update {
	u := &Update{statement: statement{db: db, table: table}}
	u.Conditional = builder.NewConditional(u)
	return u
}

// Set assigns value to field, bound as a parameter. Pass an ast.Value to
// assign a column reference or a raw expression instead.
func (u *Update) Set(field string, value any) *Update {
	return u.SetFormatted(field, value, ast.FormatBindValue)
}

// SetFormatted assigns value to field, written according to f.
func (u *Update) SetFormatted(field string, value any, f ast.Format) *Update {
	u.sets = append(u.sets, FieldUpdate{Field: field, Value: value, Format: f})
	return u
}

// Sets returns a copy of the assignments in order.
func (u *Update) Sets() []FieldUpdate {
	out := make([]FieldUpdate, len(u.sets))
	copy(out, u.sets)
	return out
}

func (u *Update) Build() (string, *database.Parameters, error) {
	if len(u.sets) == 0 {
		return "", nil, ErrEmptyUpdate
	}
	return u.render(func(v *visitor.SQLVisitor, sb *strings.Builder) error {
		sb.WriteString("UPDATE ")
		sb.WriteString(v.Quote(u.table))
		sb.WriteString(" SET ")
		for i, set := range u.sets {
			if i > 0 {
				sb.WriteString(", ")
			}
			val, err := v.Operand(set.Value, set.Format)
			if err != nil {
				return err
			}
			sb.WriteString(v.Quote(set.Field))
			sb.WriteByte('=')
			sb.WriteString(val)
		}
		return writeWhere(v, sb, u.Conditions())
	})
}

func (u *Update) Execute(ctx context.Context) (database.Result, error) {
	sql, params, err := u.Build()
	if err != nil {
		return nil, err
	}
	return u.db.ExecuteUpdate(ctx, sql, params)
}

package query

import (
	"context"
	"strings"

	"github.com/Konsultn-Engineering/sqlib/builder"
	"github.com/Konsultn-Engineering/sqlib/database"
	"github.com/Konsultn-Engineering/sqlib/visitor"
)

// Delete renders `DELETE FROM <table> [WHERE ...]`. Without conditions it
// deletes every row.
type Delete struct {
	builder.Conditional[*Delete]
	statement
}

func NewDelete(db database.Database, table string) *Delete {
	d := &Delete{statement: statement{db: db, table: table}}
	d.Conditional = builder.NewConditional(d)
	return d
}

func (d *Delete) Build() (string, *database.Parameters, error) {
	return d.render(func(v *visitor.SQLVisitor, sb *strings.Builder) error {
		sb.WriteString("DELETE FROM ")
		sb.WriteString(v.Quote(d.table))
		return writeWhere(v, sb, d.Conditions())
	})
}

func (d *Delete) Execute(ctx context.Context) (database.Result, error) {
	sql, params, err := d.Build()
	if err != nil {
		return nil, err
	}
	return d.db.ExecuteUpdate(ctx, sql, params)
}

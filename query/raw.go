package query

import (
	"context"
	"strings"

	"github.com/Konsultn-Engineering/sqlib/builder"
	"github.com/Konsultn-Engineering/sqlib/database"
	"github.com/Konsultn-Engineering/sqlib/result"
	"github.com/Konsultn-Engineering/sqlib/visitor"
)

// RawQuery appends an assembled WHERE clause to caller-written SQL:
//
//	params := database.NewParameters()
//	params.Set("season", 3)
//	query.NewRaw(db, "SELECT name, score FROM scores", params).
//		WhereRaw("season = @season").
//		WhereGt("score", 0).
//		Execute(ctx)
//
// Caller parameters are copied before the conditions bind theirs, and
// generated names skip the caller's.
type RawQuery struct {
	builder.Conditional[*RawQuery]

	db     database.Database
	sql    string
	params *database.Parameters
}

func NewRaw(db database.Database, sql string, params *database.Parameters) *RawQuery {
	r := &RawQuery{db: db, sql: sql, params: params}
	r.Conditional = builder.NewConditional(r)
	return r
}

func (r *RawQuery) Build() (string, *database.Parameters, error) {
	v := visitor.NewSQLVisitor(r.db.Dialect(), r.params.Clone())
	defer v.Release()

	var sb strings.Builder
	sb.WriteString(r.sql)
	if err := writeWhere(v, &sb, r.Conditions()); err != nil {
		return "", nil, err
	}
	return sb.String(), v.Params(), nil
}

// Execute runs the statement as a query.
func (r *RawQuery) Execute(ctx context.Context) (*result.ResultMap, error) {
	sql, params, err := r.Build()
	if err != nil {
		return nil, err
	}
	return r.db.ExecuteQuery(ctx, sql, params)
}

// ExecuteUpdate runs the statement as an update.
func (r *RawQuery) ExecuteUpdate(ctx context.Context) (database.Result, error) {
	sql, params, err := r.Build()
	if err != nil {
		return nil, err
	}
	return r.db.ExecuteUpdate(ctx, sql, params)
}

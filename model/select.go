package model

import (
	"context"
	"fmt"

	"github.com/Konsultn-Engineering/sqlib/ast"
	"github.com/Konsultn-Engineering/sqlib/builder"
	"github.com/Konsultn-Engineering/sqlib/database"
	"github.com/Konsultn-Engineering/sqlib/query"
	"github.com/Konsultn-Engineering/sqlib/schema"
)

// ModelSelect selects fillable columns of T's table and constructs the rows
// as T. It carries the full condition API:
//
//	players, err := model.Select[Player](db).
//		WhereGt("balance", 100).
//		OrderByDesc("balance").
//		Limit(10).
//		Get(ctx)
type ModelSelect[T any] struct {
	builder.Conditional[*ModelSelect[T]]

	db     database.Database
	fields []string
	orders []sortKey
	limit  *int
	offset *int
}

type sortKey struct {
	field string
	desc  bool
}

// Select selects the given columns of T, or every fillable column when none
// are given. Fields left out of the projection keep their zero values.
func Select[T any](db database.Database, fields ...string) *ModelSelect[T] {
	s := &ModelSelect[T]{db: db, fields: fields}
	s.Conditional = builder.NewConditional(s)
	return s
}

// OrderByAsc and OrderByDesc append sort keys in call order.
func (s *ModelSelect[T]) OrderByAsc(fields ...string) *ModelSelect[T] {
	for _, f := range fields {
		s.orders = append(s.orders, sortKey{field: f})
	}
	return s
}

func (s *ModelSelect[T]) OrderByDesc(fields ...string) *ModelSelect[T] {
	for _, f := range fields {
		s.orders = append(s.orders, sortKey{field: f, desc: true})
	}
	return s
}

func (s *ModelSelect[T]) Limit(n int) *ModelSelect[T] {
	s.limit = &n
	return s
}

func (s *ModelSelect[T]) Offset(n int) *ModelSelect[T] {
	s.offset = &n
	return s
}

// Query renders the selection as a query.Select.
func (s *ModelSelect[T]) Query() (*query.Select, error) {
	info, err := schema.Of[T]()
	if err != nil {
		return nil, err
	}
	columns, err := projection(info, s.fields)
	if err != nil {
		return nil, err
	}
	q := query.NewSelect(s.db, info.Table, columns...)
	for _, c := range s.Conditions() {
		r := ast.And
		if c != nil {
			r = c.Relation()
		}
		q.Append(c, r)
	}
	for _, o := range s.orders {
		if o.desc {
			q.OrderByDesc(o.field)
		} else {
			q.OrderByAsc(o.field)
		}
	}
	if s.limit != nil {
		q.Limit(*s.limit)
	}
	if s.offset != nil {
		q.Offset(*s.offset)
	}
	return q, nil
}

// Get runs the selection.
func (s *ModelSelect[T]) Get(ctx context.Context) ([]*T, error) {
	q, err := s.Query()
	if err != nil {
		return nil, err
	}
	rm, err := q.Execute(ctx)
	if err != nil {
		return nil, err
	}
	if len(s.fields) == 0 {
		return ConstructAll[T](rm)
	}
	info, err := schema.Of[T]()
	if err != nil {
		return nil, err
	}
	return constructColumns[T](info, rm, s.fields)
}

// First runs the selection limited to one row. It returns nil when nothing
// matches.
func (s *ModelSelect[T]) First(ctx context.Context) (*T, error) {
	items, err := s.Limit(1).Get(ctx)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0], nil
}

// projection checks that every requested field is a fillable column of info.
func projection(info *schema.ModelInfo, fields []string) ([]string, error) {
	if len(fields) == 0 {
		return info.Columns(), nil
	}
	for _, f := range fields {
		if _, ok := info.Field(f); !ok {
			return nil, fmt.Errorf("model: select %s: %q is not a mapped column: %w", info.Type, f, ErrOperationInvalid)
		}
	}
	return fields, nil
}

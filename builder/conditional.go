// Package builder accumulates WHERE conditions through a fluent API.
//
// Conditional is embedded by every query object; the type parameter is the
// embedding type, so chained calls keep returning it:
//
//	query.NewSelect(db, "players").
//		Where("age", ">", 1).
//		Where("age", "<", 20).
//		WhereGroup(builder.New().WhereNotEq("id", 2).OrWhereNotEq("id", 5))
package builder

import "github.com/Konsultn-Engineering/sqlib/ast"

// Group is anything holding an ordered condition sequence that can be nested
// as a parenthesized subset.
type Group interface {
	Conditions() []ast.Condition
}

// Conditional is an append-only condition sequence whose fluent methods
// return self.
type Conditional[T any] struct {
	self  T
	conds []ast.Condition
}

// NewConditional returns an empty sequence whose methods return self.
func NewConditional[T any](self T) Conditional[T] {
	return Conditional[T]{self: self}
}

// Conditions returns a copy of the accumulated conditions.
func (c *Conditional[T]) Conditions() []ast.Condition {
	out := make([]ast.Condition, len(c.conds))
	copy(out, c.conds)
	return out
}

// HasConditions reports whether anything was appended.
func (c *Conditional[T]) HasConditions() bool {
	return len(c.conds) > 0
}

// Append adds cond, connected to its predecessor by r.
func (c *Conditional[T]) Append(cond ast.Condition, r ast.Relation) T {
	if cond != nil && cond.Relation() != r {
		cond = ast.WithRelation(cond, r)
	}
	c.conds = append(c.conds, cond)
	return c.self
}

// Where adds `field operator value`, the value bound as a parameter.
func (c *Conditional[T]) Where(field, operator string, value any) T {
	return c.Append(ast.NewParameter(field, operator, value), ast.And)
}

func (c *Conditional[T]) OrWhere(field, operator string, value any) T {
	return c.Append(ast.NewParameter(field, operator, value), ast.Or)
}

// WhereFormatted adds a comparison with explicit operand formats.
func (c *Conditional[T]) WhereFormatted(param1 any, operator string, param2 any, f1, f2 ast.Format) T {
	return c.Append(ast.NewParameterFormatted(param1, operator, param2, f1, f2), ast.And)
}

func (c *Conditional[T]) OrWhereFormatted(param1 any, operator string, param2 any, f1, f2 ast.Format) T {
	return c.Append(ast.NewParameterFormatted(param1, operator, param2, f1, f2), ast.Or)
}

// WhereRaw adds sql verbatim. It is neither escaped nor validated: never
// pass user input.
func (c *Conditional[T]) WhereRaw(sql string) T {
	return c.Append(ast.NewStatic(sql), ast.And)
}

// OrWhereRaw is WhereRaw joined with OR. The same injection caveat applies.
func (c *Conditional[T]) OrWhereRaw(sql string) T {
	return c.Append(ast.NewStatic(sql), ast.Or)
}

// WhereGroup nests g's conditions in parentheses, keeping their order and
// relations.
func (c *Conditional[T]) WhereGroup(g Group) T {
	return c.Append(ast.NewSubset(g.Conditions()...), ast.And)
}

// OrWhereGroup nests g like WhereGroup and joins the whole group with OR.
func (c *Conditional[T]) OrWhereGroup(g Group) T {
	return c.Append(ast.NewSubset(g.Conditions()...), ast.Or)
}

// WhereConditions nests conds as a parenthesized subset.
func (c *Conditional[T]) WhereConditions(conds ...ast.Condition) T {
	return c.Append(ast.NewSubset(conds...), ast.And)
}

func (c *Conditional[T]) OrWhereConditions(conds ...ast.Condition) T {
	return c.Append(ast.NewSubset(conds...), ast.Or)
}

func (c *Conditional[T]) whereOp(field, op string, value any, r ast.Relation) T {
	return c.Append(ast.NewParameter(field, op, value), r)
}

func (c *Conditional[T]) WhereEq(field string, value any) T {
	return c.whereOp(field, ast.OpEqual, value, ast.And)
}

func (c *Conditional[T]) WhereNotEq(field string, value any) T {
	return c.whereOp(field, ast.OpNotEqual, value, ast.And)
}

func (c *Conditional[T]) WhereGt(field string, value any) T {
	return c.whereOp(field, ast.OpGreaterThan, value, ast.And)
}

func (c *Conditional[T]) WhereGte(field string, value any) T {
	return c.whereOp(field, ast.OpGreaterThanOrEqual, value, ast.And)
}

func (c *Conditional[T]) WhereLt(field string, value any) T {
	return c.whereOp(field, ast.OpLessThan, value, ast.And)
}

func (c *Conditional[T]) WhereLte(field string, value any) T {
	return c.whereOp(field, ast.OpLessThanOrEqual, value, ast.And)
}

func (c *Conditional[T]) WhereLike(field, pattern string) T {
	return c.whereOp(field, ast.OpLike, pattern, ast.And)
}

func (c *Conditional[T]) WhereNotLike(field, pattern string) T {
	return c.whereOp(field, ast.OpNotLike, pattern, ast.And)
}

func (c *Conditional[T]) OrWhereEq(field string, value any) T {
	return c.whereOp(field, ast.OpEqual, value, ast.Or)
}

func (c *Conditional[T]) OrWhereNotEq(field string, value any) T {
	return c.whereOp(field, ast.OpNotEqual, value, ast.Or)
}

func (c *Conditional[T]) OrWhereGt(field string, value any) T {
	return c.whereOp(field, ast.OpGreaterThan, value, ast.Or)
}

func (c *Conditional[T]) OrWhereGte(field string, value any) T {
	return c.whereOp(field, ast.OpGreaterThanOrEqual, value, ast.Or)
}

func (c *Conditional[T]) OrWhereLt(field string, value any) T {
	return c.whereOp(field, ast.OpLessThan, value, ast.Or)
}

func (c *Conditional[T]) OrWhereLte(field string, value any) T {
	return c.whereOp(field, ast.OpLessThanOrEqual, value, ast.Or)
}

func (c *Conditional[T]) OrWhereLike(field, pattern string) T {
	return c.whereOp(field, ast.OpLike, pattern, ast.Or)
}

func (c *Conditional[T]) OrWhereNotLike(field, pattern string) T {
	return c.whereOp(field, ast.OpNotLike, pattern, ast.Or)
}

func isNull(field, op string) ast.Condition {
	return ast.NewParameterFormatted(field, op, nil, ast.FormatFieldRef, ast.FormatRaw)
}

func (c *Conditional[T]) WhereNull(field string) T {
	return c.Append(isNull(field, ast.OpIsNull), ast.And)
}

func (c *Conditional[T]) WhereNotNull(field string) T {
	return c.Append(isNull(field, ast.OpIsNotNull), ast.And)
}

func (c *Conditional[T]) OrWhereNull(field string) T {
	return c.Append(isNull(field, ast.OpIsNull), ast.Or)
}

func (c *Conditional[T]) OrWhereNotNull(field string) T {
	return c.Append(isNull(field, ast.OpIsNotNull), ast.Or)
}

// in expands to (field = v1 OR field = v2 ...). An empty list matches no row.
func in(field string, values []any) ast.Condition {
	if len(values) == 0 {
		return ast.NewStatic("1 = 0")
	}
	conds := make([]ast.Condition, len(values))
	for i, v := range values {
		conds[i] = ast.WithRelation(ast.NewParameter(field, ast.OpEqual, v), ast.Or)
	}
	return ast.NewSubset(conds...)
}

// WhereIn matches field against any of values.
func (c *Conditional[T]) WhereIn(field string, values ...any) T {
	return c.Append(in(field, values), ast.And)
}

func (c *Conditional[T]) OrWhereIn(field string, values ...any) T {
	return c.Append(in(field, values), ast.Or)
}

func between(field string, start, end any) ast.Condition {
	return ast.NewSubset(
		ast.NewParameter(field, ast.OpGreaterThanOrEqual, start),
		ast.NewParameter(field, ast.OpLessThanOrEqual, end),
	)
}

// WhereBetween matches start <= field <= end.
func (c *Conditional[T]) WhereBetween(field string, start, end any) T {
	return c.Append(between(field, start, end), ast.And)
}

func (c *Conditional[T]) OrWhereBetween(field string, start, end any) T {
	return c.Append(between(field, start, end), ast.Or)
}

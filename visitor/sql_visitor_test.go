package visitor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Konsultn-Engineering/sqlib/ast"
	"github.com/Konsultn-Engineering/sqlib/database"
	"github.com/Konsultn-Engineering/sqlib/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bare quotes nothing, so expected SQL reads like the textbook form.
type bare struct{ dialect.Postgres }

func (bare) QuoteIdentifier(name string) string { return name }

func or(c ast.Condition) ast.Condition { return ast.WithRelation(c, ast.Or) }

func build(t *testing.T, d dialect.Dialect, conds ...ast.Condition) (string, *database.Parameters) {
	t.Helper()
	v := NewSQLVisitor(d, nil)
	defer v.Release()
	sql, err := v.Build(conds)
	require.NoError(t, err)
	return sql, v.Params()
}

func TestBuild_EndToEnd(t *testing.T) {
	sql, params := build(t, bare{},
		ast.NewParameter("age", ">", 1),
		ast.NewParameter("age", "<", 20),
		ast.NewSubset(
			ast.NewParameter("id", "!=", 2),
			or(ast.NewParameter("id", "!=", 5)),
		),
	)

	assert.Equal(t, "age > @val1 AND age < @val2 AND (id != @val3 OR id != @val4)", sql)
	assert.Equal(t, 4, params.Len())
	assert.Equal(t, []string{"val1", "val2", "val3", "val4"}, params.Names())
	assert.Equal(t, []any{1, 20, 2, 5}, params.Values())
}

func TestBuild_Empty(t *testing.T) {
	sql, params := build(t, bare{})
	assert.Empty(t, sql)
	assert.Equal(t, 0, params.Len())
}

func TestBuild_ConnectiveCount(t *testing.T) {
	relations := []ast.Relation{ast.Or, ast.And, ast.Or, ast.Or, ast.And, ast.And}
	conds := make([]ast.Condition, len(relations))
	for i, r := range relations {
		conds[i] = ast.WithRelation(ast.NewParameter(fmt.Sprintf("f%d", i), "=", i), r)
	}

	sql, _ := build(t, bare{}, conds...)

	tokens := strings.Fields(sql)
	var got []string
	for _, tok := range tokens {
		if tok == "AND" || tok == "OR" {
			got = append(got, tok)
		}
	}
	require.Len(t, got, len(conds)-1)
	for i, r := range relations[1:] {
		assert.Equal(t, r.String(), got[i])
	}
	assert.True(t, strings.HasPrefix(sql, "f0 = "))
}

func TestBuild_SubsetRelationOnlyJoinsSiblings(t *testing.T) {
	a := ast.NewParameter("a", "=", 1)
	b := or(ast.NewParameter("b", "=", 2))

	for _, rel := range []ast.Relation{ast.And, ast.Or} {
		sql, _ := build(t, bare{}, ast.WithRelation(ast.NewSubset(a, b), rel))
		assert.Equal(t, "(a = @val1 OR b = @val2)", sql)

		sql, _ = build(t, bare{}, ast.NewStatic("x"), ast.WithRelation(ast.NewSubset(a, b), rel))
		assert.Equal(t, "x "+rel.String()+" (a = @val1 OR b = @val2)", sql)
	}
}

func TestBuild_PlaceholdersUniqueAcrossNesting(t *testing.T) {
	sql, params := build(t, bare{},
		ast.NewParameter("a", "=", "x"),
		ast.NewSubset(
			ast.NewParameter("b", "=", "y"),
			or(ast.NewSubset(
				ast.NewParameter("c", "=", "z"),
				ast.NewParameterFormatted("d", "BETWEEN", "lo", ast.FormatBindValue, ast.FormatBindValue),
			)),
		),
	)

	assert.Equal(t, "a = @val1 AND (b = @val2 OR (c = @val3 AND @val4 BETWEEN @val5))", sql)
	seen := map[string]bool{}
	for _, n := range params.Names() {
		assert.False(t, seen[n], n)
		seen[n] = true
	}
	assert.Equal(t, 5, params.Len())
	assert.Equal(t, []any{"x", "y", "z", "d", "lo"}, params.Values())
}

func TestBuild_EmptySubsetsOmitted(t *testing.T) {
	sql, _ := build(t, bare{},
		ast.NewSubset(),
		or(ast.NewParameter("a", "=", 1)),
		ast.NewSubset(ast.NewSubset()),
		or(ast.NewParameter("b", "=", 2)),
	)
	assert.Equal(t, "a = @val1 OR b = @val2", sql)

	sql, params := build(t, bare{}, ast.NewSubset(), ast.NewSubset(ast.NewSubset()))
	assert.Empty(t, sql)
	assert.Equal(t, 0, params.Len())
}

func TestBuild_Formats(t *testing.T) {
	d := dialect.NewMySQLDialect()

	sql, params := build(t, d,
		ast.NewParameterFormatted("p.updated_at", ">", "p.created_at", ast.FormatFieldRef, ast.FormatFieldRef),
		ast.NewParameterFormatted("created_at", "<", "NOW()", ast.FormatFieldRef, ast.FormatRaw),
		ast.NewParameter("name", "=", ast.Literal("'bob'")),
		ast.NewParameterFormatted("deleted_at", ast.OpIsNull, nil, ast.FormatFieldRef, ast.FormatRaw),
		ast.NewStatic("1 = 1"),
	)

	assert.Equal(t,
		"`p`.`updated_at` > `p`.`created_at` AND `created_at` < NOW() AND `name` = 'bob' AND `deleted_at` IS NULL AND 1 = 1",
		sql)
	assert.Equal(t, 0, params.Len())
}

func TestBuild_PositionalDialect(t *testing.T) {
	sql, params := build(t, dialect.NewMySQLDialect(),
		ast.NewParameter("age", ">", 1),
		or(ast.NewParameter("age", "<", 20)),
	)
	assert.Equal(t, "`age` > ? OR `age` < ?", sql)
	assert.Equal(t, []any{1, 20}, params.Values())
}

func TestBuild_SharedBag(t *testing.T) {
	params := database.NewParameters()
	params.Bind("already")

	v := NewSQLVisitor(bare{}, params)
	defer v.Release()

	set, err := v.Operand("n", ast.FormatBindValue)
	require.NoError(t, err)
	assert.Equal(t, "@val2", set)

	sql, err := v.Build([]ast.Condition{ast.NewParameter("id", "=", 9)})
	require.NoError(t, err)
	assert.Equal(t, "id = @val3", sql)
	assert.Same(t, params, v.Params())
	assert.Equal(t, []any{"already", "n", 9}, params.Values())
}

func TestBuild_Errors(t *testing.T) {
	v := NewSQLVisitor(bare{}, nil)
	defer v.Release()

	_, err := v.Build([]ast.Condition{ast.NewParameter("a", "=", 1), nil})
	assert.ErrorIs(t, err, ErrNilCondition)

	_, err = v.Build([]ast.Condition{ast.NewParameter(42, "=", 1)})
	assert.ErrorIs(t, err, ErrInvalidOperand)

	_, err = v.Build([]ast.Condition{ast.NewSubset(ast.NewParameter("", "=", 1))})
	assert.ErrorIs(t, err, ErrInvalidOperand)
}

func TestWithRelationCopies(t *testing.T) {
	orig := ast.NewParameter("a", "=", 1)
	moved := ast.WithRelation(orig, ast.Or)

	assert.Equal(t, ast.And, orig.Relation())
	assert.Equal(t, ast.Or, moved.Relation())
}

package builder

import (
	"testing"

	"github.com/Konsultn-Engineering/sqlib/ast"
	"github.com/Konsultn-Engineering/sqlib/dialect"
	"github.com/Konsultn-Engineering/sqlib/visitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, g Group) (string, []any) {
	t.Helper()
	v := visitor.NewSQLVisitor(dialect.NewSQLiteDialect(), nil)
	defer v.Release()
	sql, err := v.Build(g.Conditions())
	require.NoError(t, err)
	return sql, v.Params().Values()
}

func TestConditionBuilder_EndToEnd(t *testing.T) {
	b := New().
		Where("age", ">", 1).
		Where("age", "<", 20).
		WhereGroup(New().Where("id", "!=", 2).OrWhere("id", "!=", 5))

	sql, args := render(t, b)
	assert.Equal(t, `"age" > @val1 AND "age" < @val2 AND ("id" != @val3 OR "id" != @val4)`, sql)
	assert.Equal(t, []any{1, 20, 2, 5}, args)
}

func TestConditionBuilder_AppendOnly(t *testing.T) {
	b := New().WhereEq("a", 1)
	snapshot := b.Conditions()
	b.OrWhereEq("b", 2)

	assert.Len(t, snapshot, 1)
	assert.Equal(t, 2, b.Len())

	conds := b.Conditions()
	assert.Equal(t, ast.And, conds[0].Relation())
	assert.Equal(t, ast.Or, conds[1].Relation())

	conds[0] = nil
	assert.NotNil(t, b.Conditions()[0])
}

func TestOrWhereGroup_JoinsWholeGroupWithOr(t *testing.T) {
	group := New().WhereEq("x", 1).WhereEq("y", 2)
	b := New().WhereEq("a", 0).OrWhereGroup(group)

	sql, _ := render(t, b)
	assert.Equal(t, `"a" = @val1 OR ("x" = @val2 AND "y" = @val3)`, sql)

	b = New().WhereEq("a", 0).WhereGroup(group)
	sql, _ = render(t, b)
	assert.Equal(t, `"a" = @val1 AND ("x" = @val2 AND "y" = @val3)`, sql)
}

func TestGroupSnapshotsSubBuilder(t *testing.T) {
	group := New().WhereEq("x", 1)
	b := New().WhereGroup(group)
	group.WhereEq("y", 2)

	sql, _ := render(t, b)
	assert.Equal(t, `("x" = @val1)`, sql)
}

func TestWhereConditions(t *testing.T) {
	b := New().
		WhereRaw("active = 1").
		OrWhereConditions(
			ast.NewParameter("role", "=", "admin"),
			ast.WithRelation(ast.NewStatic("deleted_at IS NULL"), ast.And),
		)

	sql, args := render(t, b)
	assert.Equal(t, `active = 1 OR ("role" = @val1 AND deleted_at IS NULL)`, sql)
	assert.Equal(t, []any{"admin"}, args)
}

func TestConvenienceOperators(t *testing.T) {
	b := New().
		WhereGt("a", 1).WhereGte("b", 2).WhereLt("c", 3).WhereLte("d", 4).
		WhereNotEq("e", 5).WhereLike("f", "x%").WhereNotLike("g", "y%").
		OrWhereGt("h", 6).OrWhereNull("i").WhereNotNull("j")

	sql, args := render(t, b)
	assert.Equal(t,
		`"a" > @val1 AND "b" >= @val2 AND "c" < @val3 AND "d" <= @val4 AND "e" != @val5 AND `+
			`"f" LIKE @val6 AND "g" NOT LIKE @val7 OR "h" > @val8 OR "i" IS NULL AND "j" IS NOT NULL`,
		sql)
	assert.Equal(t, []any{1, 2, 3, 4, 5, "x%", "y%", 6}, args)
}

func TestWhereInAndBetween(t *testing.T) {
	sql, args := render(t, New().WhereIn("id", 1, 2, 3).OrWhereBetween("age", 18, 30))
	assert.Equal(t, `("id" = @val1 OR "id" = @val2 OR "id" = @val3) OR ("age" >= @val4 AND "age" <= @val5)`, sql)
	assert.Equal(t, []any{1, 2, 3, 18, 30}, args)

	sql, args = render(t, New().WhereIn("id"))
	assert.Equal(t, `1 = 0`, sql)
	assert.Empty(t, args)
}

func TestWhereFormatted(t *testing.T) {
	b := New().
		WhereFormatted("updated_at", ">", "created_at", ast.FormatFieldRef, ast.FormatFieldRef).
		OrWhereFormatted("expires_at", "<", "CURRENT_TIMESTAMP", ast.FormatFieldRef, ast.FormatRaw)

	sql, args := render(t, b)
	assert.Equal(t, `"updated_at" > "created_at" OR "expires_at" < CURRENT_TIMESTAMP`, sql)
	assert.Empty(t, args)
}

func TestSubset(t *testing.T) {
	b := New().WhereEq("a", 1).OrWhereEq("b", 2)
	s := b.Subset()
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, ast.And, s.Relation())
	assert.False(t, New().HasConditions())
	assert.True(t, b.HasConditions())
}

package builder

import "github.com/Konsultn-Engineering/sqlib/ast"

// ConditionBuilder is a standalone condition sequence, used to build groups
// nested with WhereGroup.
type ConditionBuilder struct {
	Conditional[*ConditionBuilder]
}

func New() *ConditionBuilder {
	b := &ConditionBuilder{}
	b.Conditional = NewConditional(b)
	return b
}

// Subset wraps the accumulated conditions as a single condition.
func (b *ConditionBuilder) Subset() *ast.SubsetCondition {
	return ast.NewSubset(b.conds...)
}

func (b *ConditionBuilder) Len() int { return len(b.conds) }

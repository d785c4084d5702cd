package ast

// Condition is a node of the predicate tree rendered into a WHERE clause.
//
// The variant set is closed: *ParameterCondition, *StaticCondition and
// *SubsetCondition. Renderers dispatch through Accept, so a Visitor has to
// handle all three.
type Condition interface {
	// Relation connects the condition to the clause accumulated before it.
	// It is ignored for the first condition of a sequence.
	Relation() Relation
	Accept(v Visitor) error

	condition()
}

type node struct {
	relation Relation
}

func (n node) Relation() Relation { return n.relation }

func (node) condition() {}

// WithRelation returns a copy of c connected to its predecessor by r.
// The original condition is left untouched.
func WithRelation(c Condition, r Relation) Condition {
	switch cond := c.(type) {
	case *ParameterCondition:
		cp := *cond
		cp.relation = r
		return &cp
	case *StaticCondition:
		cp := *cond
		cp.relation = r
		return &cp
	case *SubsetCondition:
		cp := *cond
		cp.relation = r
		return &cp
	default:
		return c
	}
}

package ast

// Visitor renders each variant of the condition tree.
type Visitor interface {
	VisitParameter(*ParameterCondition) error
	VisitStatic(*StaticCondition) error
	VisitSubset(*SubsetCondition) error
}

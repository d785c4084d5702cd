package ast

// ParameterCondition compares two operands: `param1 operator param2`.
// Each operand is written according to its own Format.
type ParameterCondition struct {
	node
	Param1       any
	Operator     string
	Param2       any
	Param1Format Format
	Param2Format Format
}

// NewParameter builds the common `field operator value` comparison: param1 is
// written as an escaped field reference and param2 is bound as a value.
func NewParameter(param1 any, operator string, param2 any) *ParameterCondition {
	return NewParameterFormatted(param1, operator, param2, FormatFieldRef, FormatBindValue)
}

// NewParameterFormatted builds a comparison with explicit operand formats.
func NewParameterFormatted(param1 any, operator string, param2 any, format1, format2 Format) *ParameterCondition {
	return &ParameterCondition{
		Param1:       param1,
		Operator:     operator,
		Param2:       param2,
		Param1Format: format1,
		Param2Format: format2,
	}
}

func (p *ParameterCondition) Accept(v Visitor) error { return v.VisitParameter(p) }

// StaticCondition is an opaque SQL fragment written verbatim.
//
// Nothing in it is escaped or validated. Never build one from user input.
type StaticCondition struct {
	node
	SQL string
}

func NewStatic(sql string) *StaticCondition {
	return &StaticCondition{SQL: sql}
}

func (s *StaticCondition) Accept(v Visitor) error { return v.VisitStatic(s) }

// SubsetCondition is a parenthesized group. Its children relate to each
// other independently of the relation the group itself carries.
type SubsetCondition struct {
	node
	children []Condition
}

func NewSubset(children ...Condition) *SubsetCondition {
	c := make([]Condition, len(children))
	copy(c, children)
	return &SubsetCondition{children: c}
}

// Children returns a copy of the grouped conditions in insertion order.
func (s *SubsetCondition) Children() []Condition {
	c := make([]Condition, len(s.children))
	copy(c, s.children)
	return c
}

func (s *SubsetCondition) Len() int { return len(s.children) }

func (s *SubsetCondition) Accept(v Visitor) error { return v.VisitSubset(s) }

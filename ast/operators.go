package ast

// Relation is the logical connective joining a condition to its predecessor.
type Relation uint8

const (
	And Relation = iota
	Or
)

func (r Relation) String() string {
	if r == Or {
		return OpOr
	}
	return OpAnd
}

// Logical Operators
const (
	OpAnd = "AND"
	OpOr  = "OR"
	OpNot = "NOT"
)

// Comparison Operators
const (
	OpEqual              = "="
	OpNotEqual           = "!="
	OpNotEqualAlt        = "<>"
	OpLessThan           = "<"
	OpLessThanOrEqual    = "<="
	OpGreaterThan        = ">"
	OpGreaterThanOrEqual = ">="
	OpSpaceship          = "<=>"
)

// Pattern Matching
const (
	OpLike     = "LIKE"
	OpNotLike  = "NOT LIKE"
	OpILike    = "ILIKE"
	OpNotILike = "NOT ILIKE"
	OpRegexp   = "REGEXP"
)

// Null Operations
const (
	OpIsNull    = "IS NULL"
	OpIsNotNull = "IS NOT NULL"
)

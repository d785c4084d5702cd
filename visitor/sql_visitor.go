package visitor

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Konsultn-Engineering/sqlib/ast"
	"github.com/Konsultn-Engineering/sqlib/database"
	"github.com/Konsultn-Engineering/sqlib/dialect"
)

var (
	// ErrNilCondition is returned when a condition sequence contains nil.
	ErrNilCondition = errors.New("nil condition")
	// ErrInvalidOperand is returned for a field reference that is not text.
	ErrInvalidOperand = errors.New("invalid operand")
)

var visitorPool = sync.Pool{
	New: func() any {
		return &SQLVisitor{}
	},
}

// SQLVisitor renders condition trees into dialect SQL, binding values into a
// parameter bag shared by every fragment of the statement being assembled.
type SQLVisitor struct {
	sb      strings.Builder
	dialect dialect.Dialect
	params  *database.Parameters
}

// NewSQLVisitor takes a visitor from the pool. A nil params starts a new bag.
// Call Release when the statement is rendered.
func NewSQLVisitor(d dialect.Dialect, params *database.Parameters) *SQLVisitor {
	v := visitorPool.Get().(*SQLVisitor)
	if params == nil {
		params = database.NewParameters()
	}
	v.dialect = d
	v.params = params
	v.sb.Reset()
	return v
}

func (v *SQLVisitor) Release() {
	v.dialect = nil
	v.params = nil
	v.sb.Reset()
	visitorPool.Put(v)
}

// Params returns the bag values were bound into.
func (v *SQLVisitor) Params() *database.Parameters {
	return v.params
}

// Quote escapes an identifier for the active dialect.
func (v *SQLVisitor) Quote(name string) string {
	return v.dialect.QuoteIdentifier(name)
}

// Build renders conds as a WHERE fragment without the WHERE keyword. It
// returns "" when nothing is left to render, in which case the caller omits
// the clause.
func (v *SQLVisitor) Build(conds []ast.Condition) (string, error) {
	v.sb.Reset()
	if err := v.writeSequence(conds); err != nil {
		return "", err
	}
	return v.sb.String(), nil
}

// Operand renders a single operand. An ast.Value carries its own format and
// overrides f.
func (v *SQLVisitor) Operand(val any, f ast.Format) (string, error) {
	if tagged, ok := val.(ast.Value); ok {
		val, f = tagged.Val, tagged.Format
	}
	switch f {
	case ast.FormatFieldRef:
		name, ok := identifier(val)
		if !ok {
			return "", fmt.Errorf("visitor: field reference %v (%T): %w", val, val, ErrInvalidOperand)
		}
		return v.dialect.QuoteIdentifier(name), nil
	case ast.FormatRaw:
		return fmt.Sprint(val), nil
	default:
		name := v.params.Bind(val)
		return v.dialect.Placeholder(name, v.params.Len()), nil
	}
}

func identifier(val any) (string, bool) {
	switch s := val.(type) {
	case string:
		return s, s != ""
	case fmt.Stringer:
		return s.String(), true
	}
	return "", false
}

// writeSequence folds conds left to right. The first rendered condition gets
// no connective; every later one is prefixed by its own relation. Empty
// subsets render nothing and are skipped entirely.
func (v *SQLVisitor) writeSequence(conds []ast.Condition) error {
	first := true
	for _, c := range conds {
		if c == nil {
			return ErrNilCondition
		}
		if isEmpty(c) {
			continue
		}
		if !first {
			v.sb.WriteByte(' ')
			v.sb.WriteString(c.Relation().String())
			v.sb.WriteByte(' ')
		}
		first = false

		if err := c.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

// isEmpty reports whether c renders to nothing.
func isEmpty(c ast.Condition) bool {
	s, ok := c.(*ast.SubsetCondition)
	if !ok {
		return false
	}
	for _, child := range s.Children() {
		if child == nil || !isEmpty(child) {
			return false
		}
	}
	return true
}

func (v *SQLVisitor) VisitParameter(p *ast.ParameterCondition) error {
	left, err := v.Operand(p.Param1, p.Param1Format)
	if err != nil {
		return err
	}
	v.sb.WriteString(left)
	v.sb.WriteByte(' ')
	v.sb.WriteString(p.Operator)

	// Unary operators (IS NULL) carry no second operand.
	if p.Param2 == nil && p.Param2Format == ast.FormatRaw {
		return nil
	}

	right, err := v.Operand(p.Param2, p.Param2Format)
	if err != nil {
		return err
	}
	v.sb.WriteByte(' ')
	v.sb.WriteString(right)
	return nil
}

func (v *SQLVisitor) VisitStatic(s *ast.StaticCondition) error {
	v.sb.WriteString(s.SQL)
	return nil
}

func (v *SQLVisitor) VisitSubset(s *ast.SubsetCondition) error {
	v.sb.WriteByte('(')
	if err := v.writeSequence(s.Children()); err != nil {
		return err
	}
	v.sb.WriteByte(')')
	return nil
}

var _ ast.Visitor = (*SQLVisitor)(nil)

package ast

// Format selects how an operand is written into SQL.
type Format uint8

const (
	// FormatBindValue binds the operand as a placeholder parameter.
	FormatBindValue Format = iota
	// FormatFieldRef writes the operand as a dialect-escaped identifier.
	FormatFieldRef
	// FormatRaw writes the operand's text as is. Injection-unsafe.
	FormatRaw
)

func (f Format) String() string {
	switch f {
	case FormatFieldRef:
		return "field"
	case FormatRaw:
		return "raw"
	default:
		return "value"
	}
}

// Value pairs an operand with an explicit Format. Insert rows and update
// assignments accept it wherever a plain value is accepted.
type Value struct {
	Val    any
	Format Format
}

// Field refers to another column, e.g. `SET a = b` or `VALUES (created_at)`.
func Field(name string) Value { return Value{Val: name, Format: FormatFieldRef} }

// Literal passes sql through unescaped, e.g. Literal("NOW()").
func Literal(sql string) Value { return Value{Val: sql, Format: FormatRaw} }

// Bind forces value binding. It is the default for plain values.
func Bind(v any) Value { return Value{Val: v, Format: FormatBindValue} }

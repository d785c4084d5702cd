package query

import (
	"context"
	"strconv"
	"strings"

	"github.com/Konsultn-Engineering/sqlib/builder"
	"github.com/Konsultn-Engineering/sqlib/database"
	"github.com/Konsultn-Engineering/sqlib/result"
	"github.com/Konsultn-Engineering/sqlib/visitor"
)

type order struct {
	field string
	desc  bool
}

// Select renders `SELECT <projection> FROM <table> [WHERE ...]`.
type Select struct {
	builder.Conditional[*Select]
	statement

	fields   []string
	fieldSQL string
	orders   []order
	limit    *int
	offset   *int
}

// NewSelect selects fields from table. No fields selects *.
func NewSelect(db database.Database, table string, fields ...string) *Select {
	s := &Select{statement: statement{db: db, table: table}}
	s.Conditional = builder.NewConditional(s)
	return s.Fields(fields...)
}

// NewSelectSQL uses fieldSQL verbatim as the projection, e.g. "COUNT(*) AS n".
func NewSelectSQL(db database.Database, table, fieldSQL string) *Select {
	s := NewSelect(db, table)
	s.fieldSQL = fieldSQL
	return s
}

// Fields replaces the projected columns. Each one is escaped.
func (s *Select) Fields(fields ...string) *Select {
	s.fields = append(s.fields[:0], fields...)
	return s
}

func (s *Select) OrderByAsc(fields ...string) *Select {
	for _, f := range fields {
		s.orders = append(s.orders, order{field: f})
	}
	return s
}

func (s *Select) OrderByDesc(fields ...string) *Select {
	for _, f := range fields {
		s.orders = append(s.orders, order{field: f, desc: true})
	}
	return s
}

func (s *Select) Limit(n int) *Select {
	s.limit = &n
	return s
}

func (s *Select) Offset(n int) *Select {
	s.offset = &n
	return s
}

// Build renders the statement without running it.
func (s *Select) Build() (string, *database.Parameters, error) {
	return s.render(func(v *visitor.SQLVisitor, sb *strings.Builder) error {
		sb.WriteString("SELECT ")
		switch {
		case s.fieldSQL != "":
			sb.WriteString(s.fieldSQL)
		case len(s.fields) > 0:
			sb.WriteString(quoteAll(v, s.fields))
		default:
			sb.WriteByte('*')
		}
		sb.WriteString(" FROM ")
		sb.WriteString(v.Quote(s.table))

		if err := writeWhere(v, sb, s.Conditions()); err != nil {
			return err
		}

		for i, o := range s.orders {
			if i == 0 {
				sb.WriteString(" ORDER BY ")
			} else {
				sb.WriteString(", ")
			}
			sb.WriteString(v.Quote(o.field))
			if o.desc {
				sb.WriteString(" DESC")
			} else {
				sb.WriteString(" ASC")
			}
		}
		if s.limit != nil {
			sb.WriteString(" LIMIT ")
			sb.WriteString(strconv.Itoa(*s.limit))
		}
		if s.offset != nil {
			sb.WriteString(" OFFSET ")
			sb.WriteString(strconv.Itoa(*s.offset))
		}
		return nil
	})
}

// Execute renders and runs the statement.
func (s *Select) Execute(ctx context.Context) (*result.ResultMap, error) {
	sql, params, err := s.Build()
	if err != nil {
		return nil, err
	}
	return s.db.ExecuteQuery(ctx, sql, params)
}

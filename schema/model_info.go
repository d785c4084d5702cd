package schema

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/Konsultn-Engineering/sqlib/utils"
)

// ErrConfiguration is returned for types that cannot be mapped to a table.
var ErrConfiguration = errors.New("invalid model configuration")

// Table is embedded in a model to declare its table:
//
//	type Player struct {
//		schema.Table `table:"players"`
//		ID   int64  `db:"column:player_id;primary"`
//		Name string `db:"name"`
//	}
//
// `table:"auto"` derives the name from the type name (Player -> players).
type Table struct{}

var tableType = reflect.TypeOf(Table{})

// TableNamer is an alternative to embedding Table.
type TableNamer interface {
	TableName() string
}

// ModelField maps one struct field to a column.
type ModelField struct {
	Name       string // Go field name
	Column     string
	Type       reflect.Type
	Index      []int
	PrimaryKey bool
	// PrimaryName names the primary key constraint, if given.
	PrimaryName string
	// ForeignKey references another column as table.column.
	ForeignKey string
	Generator  string
	Fragments  []Fragment
}

// GetSchema returns the fragment with the highest level not above level.
func (f *ModelField) GetSchema(level int) (Fragment, bool) {
	var (
		best  Fragment
		found bool
	)
	for _, frag := range f.Fragments {
		if frag.Level > level {
			continue
		}
		if !found || frag.Level >= best.Level {
			best, found = frag, true
		}
	}
	return best, found
}

// Value returns the field within the struct value v.
func (f *ModelField) Value(v reflect.Value) reflect.Value {
	return v.FieldByIndex(f.Index)
}

// Interface returns the field's current value within v. Nil pointers come
// back as untyped nil.
func (f *ModelField) Interface(v reflect.Value) any {
	fv := f.Value(v)
	if fv.Kind() == reflect.Ptr && fv.IsNil() {
		return nil
	}
	return fv.Interface()
}

// IsZero reports whether the field holds its zero value within v.
func (f *ModelField) IsZero(v reflect.Value) bool {
	return f.Value(v).IsZero()
}

// Set assigns val to the field within v, converting between compatible types.
func (f *ModelField) Set(v reflect.Value, val any) error {
	if err := utils.Assign(f.Value(v), val); err != nil {
		return fmt.Errorf("schema: field %s (column %s): %w", f.Name, f.Column, err)
	}
	return nil
}

// ModelInfo is the table mapping of a struct type.
type ModelInfo struct {
	Type  reflect.Type
	Table string
	// Fillables lists the mapped fields in declaration order.
	Fillables []*ModelField
	// Primary is the first fillable field tagged primary, or nil. Later
	// primary tags are ignored.
	Primary *ModelField

	byColumn map[string]*ModelField
}

// Field looks up a fillable by column name.
func (m *ModelInfo) Field(column string) (*ModelField, bool) {
	f, ok := m.byColumn[column]
	return f, ok
}

// Columns returns the fillable column names in order.
func (m *ModelInfo) Columns() []string {
	cols := make([]string, len(m.Fillables))
	for i, f := range m.Fillables {
		cols[i] = f.Column
	}
	return cols
}

func (m *ModelInfo) HasPrimary() bool { return m.Primary != nil }

// New allocates a zero value of the model type and returns a pointer to it.
func (m *ModelInfo) New() reflect.Value {
	return reflect.New(m.Type)
}

// NewModelInfo builds the mapping of t without caching it. Use Lookup to go
// through the process-wide registry.
func NewModelInfo(t reflect.Type) (*ModelInfo, error) {
	t = indirect(t)
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %s is not a struct: %w", t, ErrConfiguration)
	}

	table, err := tableName(t)
	if err != nil {
		return nil, err
	}

	info := &ModelInfo{
		Type:     t,
		Table:    table,
		byColumn: make(map[string]*ModelField),
	}
	if err := info.collect(t, nil); err != nil {
		return nil, err
	}
	return info, nil
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func tableName(t reflect.Type) (string, error) {
	if t.Implements(reflect.TypeOf((*TableNamer)(nil)).Elem()) ||
		reflect.PointerTo(t).Implements(reflect.TypeOf((*TableNamer)(nil)).Elem()) {
		name := reflect.New(t).Interface().(TableNamer).TableName()
		if name == "" {
			return "", fmt.Errorf("schema: %s.TableName returned an empty name: %w", t, ErrConfiguration)
		}
		return name, nil
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Type != tableType {
			continue
		}
		name := sf.Tag.Get("table")
		switch name {
		case "":
			return "", fmt.Errorf("schema: %s embeds schema.Table without a table tag: %w", t, ErrConfiguration)
		case "auto":
			return AutoTableName(t.Name()), nil
		default:
			return name, nil
		}
	}
	return "", fmt.Errorf("schema: %s declares no table: %w", t, ErrConfiguration)
}

// collect walks t's fields, descending into untagged embedded structs.
func (m *ModelInfo) collect(t reflect.Type, parent []int) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Type == tableType {
			continue
		}
		index := append(append([]int(nil), parent...), i)

		tag, tagged, err := ParseTag(sf.Name, sf.Tag)
		if err != nil {
			return fmt.Errorf("schema: %s: %w", t, err)
		}
		if !tagged {
			if sf.Anonymous && indirect(sf.Type).Kind() == reflect.Struct && sf.Type.Kind() != reflect.Ptr {
				if err := m.collect(sf.Type, index); err != nil {
					return err
				}
			}
			continue
		}
		if tag.Skip {
			continue
		}
		if !sf.IsExported() {
			return fmt.Errorf("schema: %s.%s is tagged but unexported: %w", t, sf.Name, ErrConfiguration)
		}
		if _, dup := m.byColumn[tag.ColumnName]; dup {
			return fmt.Errorf("schema: %s maps column %q twice: %w", t, tag.ColumnName, ErrConfiguration)
		}

		fragments, err := parseSchemaTag(sf.Tag.Get("schema"))
		if err != nil {
			return fmt.Errorf("schema: %s.%s: %w", t, sf.Name, err)
		}

		field := &ModelField{
			Name:        sf.Name,
			Column:      tag.ColumnName,
			Type:        sf.Type,
			Index:       index,
			PrimaryKey:  tag.Primary,
			PrimaryName: tag.PrimaryName,
			ForeignKey:  tag.ForeignKey,
			Generator:   tag.Generator,
			Fragments:   fragments,
		}
		m.Fillables = append(m.Fillables, field)
		m.byColumn[field.Column] = field
		if field.PrimaryKey && m.Primary == nil {
			m.Primary = field
		}
	}
	return nil
}

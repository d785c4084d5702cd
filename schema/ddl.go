package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/Konsultn-Engineering/sqlib/dialect"
	"github.com/shopspring/decimal"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	bytesType   = reflect.TypeOf([]byte(nil))
	uuidLike    = reflect.TypeOf([16]byte{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// CreateTableSQL renders a CREATE TABLE statement for info. Each column uses
// its schema fragment for level (see ModelField.GetSchema) or, when it has
// none, a type derived from the Go field type.
func CreateTableSQL(info *ModelInfo, level int, d dialect.Dialect) (string, error) {
	if len(info.Fillables) == 0 {
		return "", fmt.Errorf("schema: %s has no fillable fields: %w", info.Type, ErrConfiguration)
	}

	var defs []string
	for _, f := range info.Fillables {
		def, err := columnDefinition(info, f, level, d)
		if err != nil {
			return "", err
		}
		defs = append(defs, d.QuoteIdentifier(f.Column)+" "+def)
	}

	if p := info.Primary; p != nil {
		constraint := "PRIMARY KEY (" + d.QuoteIdentifier(p.Column) + ")"
		if p.PrimaryName != "" {
			constraint = "CONSTRAINT " + d.QuoteIdentifier(p.PrimaryName) + " " + constraint
		}
		defs = append(defs, constraint)
	}

	for _, f := range info.Fillables {
		if f.ForeignKey == "" {
			continue
		}
		dot := strings.LastIndexByte(f.ForeignKey, '.')
		defs = append(defs, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			d.QuoteIdentifier(f.Column),
			d.QuoteIdentifier(f.ForeignKey[:dot]),
			d.QuoteIdentifier(f.ForeignKey[dot+1:])))
	}

	return "CREATE TABLE IF NOT EXISTS " + d.QuoteIdentifier(info.Table) +
		" (" + strings.Join(defs, ", ") + ")", nil
}

func columnDefinition(info *ModelInfo, f *ModelField, level int, d dialect.Dialect) (string, error) {
	if frag, ok := f.GetSchema(level); ok {
		return frag.SQL, nil
	}

	t := f.Type
	nullable := t.Kind() == reflect.Ptr
	t = indirect(t)

	autoIncrement := f == info.Primary && f.Generator == "" && isInteger(t.Kind())
	if autoIncrement {
		switch d.Name() {
		case "postgres":
			return "BIGSERIAL", nil
		case "sqlite3":
			// INTEGER PRIMARY KEY aliases the rowid.
			return "INTEGER", nil
		default:
			return "BIGINT NOT NULL AUTO_INCREMENT", nil
		}
	}

	sqlType, ok := sqlTypeOf(t, d)
	if !ok {
		return "", fmt.Errorf("schema: no column type for %s.%s (%s), add a schema tag: %w",
			info.Type, f.Name, f.Type, ErrConfiguration)
	}
	if !nullable && f.Type.Kind() != reflect.Slice {
		sqlType += " NOT NULL"
	}
	return sqlType, nil
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func sqlTypeOf(t reflect.Type, d dialect.Dialect) (string, bool) {
	pg := d.Name() == "postgres"
	switch {
	case t == timeType:
		if pg {
			return "TIMESTAMPTZ", true
		}
		return "TIMESTAMP", true
	case t == bytesType:
		if pg {
			return "BYTEA", true
		}
		return "BLOB", true
	case t.Kind() == reflect.Array && t.ConvertibleTo(uuidLike):
		if pg {
			return "UUID", true
		}
		return "CHAR(36)", true
	case t == decimalType:
		return "DECIMAL(20,6)", true
	}

	switch t.Kind() {
	case reflect.Bool:
		return "BOOLEAN", true
	case reflect.Int8, reflect.Int16, reflect.Uint8:
		return "SMALLINT", true
	case reflect.Int32, reflect.Uint16:
		return "INTEGER", true
	case reflect.Int, reflect.Int64, reflect.Uint32, reflect.Uint, reflect.Uint64:
		return "BIGINT", true
	case reflect.Float32:
		return "REAL", true
	case reflect.Float64:
		return "DOUBLE PRECISION", true
	case reflect.String:
		return "TEXT", true
	}
	return "", false
}

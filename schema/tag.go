package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ParsedTag is the mapping configuration read from a field's db tag.
type ParsedTag struct {
	ColumnName string // Database column name (explicit or derived from field name)
	Skip       bool   // db:"-"

	Primary     bool
	PrimaryName string // Named primary key constraint (primary:pk_user)
	ForeignKey  string // Foreign key reference (table.column format)
	Generator   string // ID generator applied before insert (uuid, ulid)
}

// ParseTag parses the db tag of a Go field.
//
// Supported tag syntax:
//
//	`db:"column_name"`                         // Basic column mapping
//	`db:"column:user_id;primary:pk_user"`      // Explicit column, named primary key
//	`db:"id;primary;generator:uuid"`           // Leading bare column name plus options
//	`db:"primary;generator:uuid"`              // Column derived from the field name
//	`db:"fk:teams.team_id"`                    // Foreign key
//	`db:"-"`                                   // Skip field entirely
//
// ok is false when the field carries no db tag at all.
func ParseTag(fieldName string, tag reflect.StructTag) (parsed *ParsedTag, ok bool, err error) {
	tagValue, ok := tag.Lookup("db")
	if !ok {
		return nil, false, nil
	}
	tagValue = strings.TrimSpace(tagValue)

	if tagValue == "-" {
		return &ParsedTag{Skip: true}, true, nil
	}

	parsed = &ParsedTag{ColumnName: toSnakeCase(fieldName)}

	// Handle simple column name (most common case)
	if !strings.ContainsAny(tagValue, ";:") {
		if tagValue != "" && !parseFlag(parsed, tagValue) {
			parsed.ColumnName = tagValue
		}
		return parsed, true, nil
	}

	for i, option := range strings.Split(tagValue, ";") {
		option = strings.TrimSpace(option)
		if option == "" {
			continue
		}
		// A leading option that is neither a flag nor key:value names the column.
		if i == 0 && !strings.Contains(option, ":") && !parseFlag(parsed, option) {
			parsed.ColumnName = option
			continue
		}
		if err := parseOption(parsed, option); err != nil {
			return nil, true, fmt.Errorf("field %s: %w", fieldName, err)
		}
	}
	return parsed, true, nil
}

// parseOption parses a single tag option (flag or key:value pair).
func parseOption(tag *ParsedTag, option string) error {
	if colonIdx := strings.IndexByte(option, ':'); colonIdx != -1 {
		key := strings.TrimSpace(option[:colonIdx])
		value := strings.TrimSpace(option[colonIdx+1:])
		return parseKeyValue(tag, key, value)
	}

	if !parseFlag(tag, option) {
		return fmt.Errorf("unknown db tag option %q: %w", option, ErrConfiguration)
	}
	return nil
}

func parseFlag(tag *ParsedTag, flag string) bool {
	switch flag {
	case "primary", "primary_key":
		tag.Primary = true
	default:
		return false
	}
	return true
}

func parseKeyValue(tag *ParsedTag, key, value string) error {
	switch key {
	case "column", "name":
		if value == "" {
			return fmt.Errorf("empty column name: %w", ErrConfiguration)
		}
		tag.ColumnName = value

	case "primary", "primary_key":
		tag.Primary = true
		tag.PrimaryName = value

	case "fk", "foreign_key", "references":
		if strings.LastIndexByte(value, '.') <= 0 {
			return fmt.Errorf("foreign key %q must be table.column: %w", value, ErrConfiguration)
		}
		tag.ForeignKey = value

	case "generator", "gen":
		if _, ok := defaultGenerators.Get(value); !ok {
			return fmt.Errorf("unknown generator %q: %w", value, ErrConfiguration)
		}
		tag.Generator = value

	default:
		return fmt.Errorf("unknown db tag key %q: %w", key, ErrConfiguration)
	}

	return nil
}

// Fragment is a column definition valid from a schema level on.
type Fragment struct {
	Level int
	SQL   string
}

// parseSchemaTag parses `schema:"1=INT NOT NULL;2=BIGINT NOT NULL"`. A value
// without a level prefix is level 1. Fragments come back sorted by level.
func parseSchemaTag(value string) ([]Fragment, error) {
	var out []Fragment
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		level, sql := 1, part
		if eq := strings.IndexByte(part, '='); eq > 0 {
			if n, err := strconv.Atoi(strings.TrimSpace(part[:eq])); err == nil {
				level, sql = n, strings.TrimSpace(part[eq+1:])
			}
		}
		if level < 0 || sql == "" {
			return nil, fmt.Errorf("invalid schema fragment %q: %w", part, ErrConfiguration)
		}
		out = append(out, Fragment{Level: level, SQL: sql})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

package dialect

import (
	"fmt"
	"strings"
)

// Dialect captures the SQL differences the query layer has to care about.
type Dialect interface {
	// Name is the driver-facing name, e.g. "postgres".
	Name() string
	// QuoteIdentifier escapes every dot-separated segment of name.
	QuoteIdentifier(name string) string
	// Placeholder renders the bind marker for the parameter called name,
	// which is the index-th bind (1-based) of the statement.
	Placeholder(name string, index int) string
	// Named reports whether parameters are passed by name rather than position.
	Named() bool
	SupportsReturning() bool
	// LastInsertIDQuery returns a statement selecting the id generated by the
	// previous insert on the same session as a single column named "id".
	LastInsertIDQuery() string
}

// quoteSegments wraps each dot-separated part of name in q, doubling any
// embedded q. A "*" segment is left bare.
func quoteSegments(name, q string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if p == "*" {
			continue
		}
		parts[i] = q + strings.ReplaceAll(p, q, q+q) + q
	}
	return strings.Join(parts, ".")
}

// New returns the dialect registered under name.
func New(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pgx":
		return NewPostgresDialect(), nil
	case "mysql", "mariadb":
		return NewMySQLDialect(), nil
	case "tidb":
		return NewTiDBDialect(), nil
	case "sqlite", "sqlite3":
		return NewSQLiteDialect(), nil
	default:
		return nil, fmt.Errorf("dialect: unknown dialect %q", name)
	}
}

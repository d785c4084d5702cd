package dialect

type SQLite struct{}

func NewSQLiteDialect() Dialect {
	return &SQLite{}
}

func (s SQLite) Name() string { return "sqlite3" }

func (s SQLite) QuoteIdentifier(name string) string {
	return quoteSegments(name, `"`)
}

// Placeholder uses the @name form, bound through sql.Named.
func (s SQLite) Placeholder(name string, _ int) string {
	return "@" + name
}

func (s SQLite) Named() bool { return true }

// SupportsReturning is false: ids come back through the driver's
// LastInsertId, which works on every SQLite version.
func (s SQLite) SupportsReturning() bool { return false }

func (s SQLite) LastInsertIDQuery() string {
	return "SELECT last_insert_rowid() AS id"
}

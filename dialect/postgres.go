package dialect

type Postgres struct{}

func NewPostgresDialect() Dialect {
	return &Postgres{}
}

func (p Postgres) Name() string { return "postgres" }

func (p Postgres) QuoteIdentifier(name string) string {
	return quoteSegments(name, `"`)
}

// Placeholder renders pgx named-argument syntax (@val1). pgx rewrites it to
// $n when the arguments are passed as pgx.NamedArgs.
func (p Postgres) Placeholder(name string, _ int) string {
	return "@" + name
}

func (p Postgres) Named() bool { return true }

func (p Postgres) SupportsReturning() bool { return true }

func (p Postgres) LastInsertIDQuery() string {
	return "SELECT lastval() AS id"
}

package dialect

type MySQL struct{}

func NewMySQLDialect() Dialect {
	return &MySQL{}
}

func (m MySQL) Name() string { return "mysql" }

func (m MySQL) QuoteIdentifier(name string) string {
	return quoteSegments(name, "`")
}

// Placeholder is positional; arguments are passed in bind order.
func (m MySQL) Placeholder(string, int) string {
	return "?"
}

func (m MySQL) Named() bool { return false }

func (m MySQL) SupportsReturning() bool { return false }

func (m MySQL) LastInsertIDQuery() string {
	return "SELECT LAST_INSERT_ID() AS id"
}

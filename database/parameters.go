package database

import (
	"database/sql"
	"strconv"

	"github.com/jackc/pgx/v5"
)

// ParameterPrefix prefixes every generated placeholder name.
const ParameterPrefix = "val"

// Parameters is the placeholder bag of one statement. Generated names are
// ParameterPrefix followed by the bag size after insertion (val1, val2, ...),
// skipping names already set by the caller, so they never repeat within a
// bag. Insertion order is kept for positional dialects.
//
// A nil *Parameters is an empty bag.
type Parameters struct {
	names  []string
	values map[string]any
}

func NewParameters() *Parameters {
	return &Parameters{values: make(map[string]any)}
}

// Bind stores v under the next generated name and returns that name.
func (p *Parameters) Bind(v any) string {
	name := ParameterPrefix + strconv.Itoa(len(p.names)+1)
	for n := len(p.names) + 2; p.has(name); n++ {
		name = ParameterPrefix + strconv.Itoa(n)
	}
	p.Set(name, v)
	return name
}

// Set stores v under a caller-chosen name. Rebinding a name replaces its value
// and keeps its original position.
func (p *Parameters) Set(name string, v any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	if _, ok := p.values[name]; !ok {
		p.names = append(p.names, name)
	}
	p.values[name] = v
}

// Clone copies the bag. A nil bag clones to an empty one.
func (p *Parameters) Clone() *Parameters {
	c := NewParameters()
	if p == nil {
		return c
	}
	c.names = append(c.names, p.names...)
	for k, v := range p.values {
		c.values[k] = v
	}
	return c
}

func (p *Parameters) has(name string) bool {
	_, ok := p.values[name]
	return ok
}

func (p *Parameters) Get(name string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.values[name]
	return v, ok
}

func (p *Parameters) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

// Names returns the parameter names in insertion order.
func (p *Parameters) Names() []string {
	if p == nil {
		return nil
	}
	n := make([]string, len(p.names))
	copy(n, p.names)
	return n
}

// Values returns the bound values in insertion order, for positional binds.
func (p *Parameters) Values() []any {
	if p == nil {
		return nil
	}
	v := make([]any, len(p.names))
	for i, name := range p.names {
		v[i] = p.values[name]
	}
	return v
}

// NamedArgs adapts the bag for pgx's @name rewriting.
func (p *Parameters) NamedArgs() pgx.NamedArgs {
	args := make(pgx.NamedArgs, p.Len())
	for _, name := range p.Names() {
		args[name] = p.values[name]
	}
	return args
}

// Named adapts the bag for database/sql drivers supporting sql.Named.
func (p *Parameters) Named() []any {
	args := make([]any, 0, p.Len())
	for _, name := range p.Names() {
		args = append(args, sql.Named(name, p.values[name]))
	}
	return args
}

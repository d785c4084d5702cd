package database

import (
	"context"
	"errors"

	"github.com/Konsultn-Engineering/sqlib/dialect"
	"github.com/Konsultn-Engineering/sqlib/result"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxDatabase implements Database for pgxpool.Pool.
type PgxDatabase struct {
	pool    *pgxpool.Pool
	dialect dialect.Dialect
	opts    options
	obs     *observer
	last    lastError
}

// NewPgxDatabase creates a new PgxDatabase. Statements are rendered with
// @name placeholders and bound through pgx.NamedArgs.
func NewPgxDatabase(pool *pgxpool.Pool, opts ...Option) *PgxDatabase {
	o := newOptions(opts)
	d := o.dialect
	if d == nil {
		d = dialect.NewPostgresDialect()
	}
	return &PgxDatabase{
		pool:    pool,
		dialect: d,
		opts:    o,
		obs:     newObserver(d.Name(), o),
	}
}

func (p *PgxDatabase) Dialect() dialect.Dialect { return p.dialect }

// Pool exposes the underlying pool.
func (p *PgxDatabase) Pool() *pgxpool.Pool { return p.pool }

func (p *PgxDatabase) ExecuteQuery(ctx context.Context, query string, params *Parameters) (*result.ResultMap, error) {
	ctx, cancel := p.opts.withTimeout(ctx)
	defer cancel()
	ctx, done := p.obs.start(ctx, "query", query, params)

	rm, err := p.query(ctx, query, params)
	if err != nil {
		err = &ExecutionError{Op: "query", SQL: query, Err: err}
		p.last.set(err)
	}
	done(err)
	return rm, err
}

func (p *PgxDatabase) query(ctx context.Context, query string, params *Parameters) (*result.ResultMap, error) {
	rows, err := p.pool.Query(ctx, query, p.args(params)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	headers := make([]string, len(fields))
	types := make([]result.ColumnType, len(fields))
	typeMap := rows.Conn().TypeMap()
	for i, fd := range fields {
		headers[i] = fd.Name
		types[i] = result.ColumnType{Name: fd.Name}
		if t, ok := typeMap.TypeForOID(fd.DataTypeOID); ok {
			types[i].DatabaseType = t.Name
		}
	}

	rm, err := result.NewResultMap(headers, types)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		if _, err := rm.AddResult(values...); err != nil {
			return nil, err
		}
	}
	return rm, rows.Err()
}

func (p *PgxDatabase) ExecuteUpdate(ctx context.Context, query string, params *Parameters) (Result, error) {
	ctx, cancel := p.opts.withTimeout(ctx)
	defer cancel()
	ctx, done := p.obs.start(ctx, "exec", query, params)

	tag, err := p.pool.Exec(ctx, query, p.args(params)...)
	if err != nil {
		err = &ExecutionError{Op: "exec", SQL: query, Err: err}
		p.last.set(err)
		done(err)
		return nil, err
	}
	done(nil)
	return &PgxResult{cmdTag: tag}, nil
}

func (p *PgxDatabase) args(params *Parameters) []any {
	if params.Len() == 0 {
		return nil
	}
	if p.dialect.Named() {
		return []any{params.NamedArgs()}
	}
	return params.Values()
}

// PingContext verifies the connection to the database is alive.
func (p *PgxDatabase) PingContext(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PgxDatabase) LastError() error { return p.last.get() }

// Close closes the pool.
func (p *PgxDatabase) Close() error {
	p.pool.Close()
	return nil
}

// ErrLastInsertIDUnsupported is returned by PgxResult.LastInsertId. Use an
// INSERT ... RETURNING statement instead.
var ErrLastInsertIDUnsupported = errors.New("database: LastInsertId not supported by postgres")

// PgxResult implements Result for pgxpool command tags.
type PgxResult struct {
	cmdTag pgconn.CommandTag
}

func (r *PgxResult) LastInsertId() (int64, error) {
	return 0, ErrLastInsertIDUnsupported
}

// RowsAffected returns the number of rows affected by the command.
func (r *PgxResult) RowsAffected() (int64, error) {
	return r.cmdTag.RowsAffected(), nil
}

var (
	_ Database = (*PgxDatabase)(nil)
	_ pgx.QueryRewriter = pgx.NamedArgs(nil)
)

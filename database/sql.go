package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Konsultn-Engineering/sqlib/cache"
	"github.com/Konsultn-Engineering/sqlib/dialect"
	"github.com/Konsultn-Engineering/sqlib/result"
)

// SqlDatabase implements Database for *sql.DB.
type SqlDatabase struct {
	db      *sql.DB
	dialect dialect.Dialect
	opts    options
	obs     *observer
	stmts   *cache.StatementCache
	last    lastError
}

// NewSqlDatabase wraps db, rendering and binding statements for d.
func NewSqlDatabase(db *sql.DB, d dialect.Dialect, opts ...Option) *SqlDatabase {
	o := newOptions(opts)
	if o.dialect != nil {
		d = o.dialect
	}
	s := &SqlDatabase{
		db:      db,
		dialect: d,
		opts:    o,
		obs:     newObserver(d.Name(), o),
	}
	if o.stmtCacheSize > 0 {
		s.stmts = cache.NewStatementCache(o.stmtCacheSize)
	}
	return s
}

func (s *SqlDatabase) Dialect() dialect.Dialect { return s.dialect }

// DB exposes the underlying handle.
func (s *SqlDatabase) DB() *sql.DB { return s.db }

// ExecuteQuery runs query and reads every row into memory. Of several
// result sets only the last is kept.
func (s *SqlDatabase) ExecuteQuery(ctx context.Context, query string, params *Parameters) (*result.ResultMap, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()
	ctx, done := s.obs.start(ctx, "query", query, params)

	rm, err := s.query(ctx, query, params)
	if err != nil {
		err = &ExecutionError{Op: "query", SQL: query, Err: err}
		s.last.set(err)
	}
	done(err)
	return rm, err
}

func (s *SqlDatabase) query(ctx context.Context, query string, params *Parameters) (*result.ResultMap, error) {
	args := s.args(params)

	var (
		rows *sql.Rows
		err  error
	)
	if s.stmts != nil {
		stmt, release, perr := s.stmts.Acquire(ctx, s.db, query)
		if perr != nil {
			return nil, perr
		}
		defer release()
		rows, err = stmt.QueryContext(ctx, args...)
	} else {
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collect(rows)
}

// ExecuteUpdate runs a statement returning no rows.
func (s *SqlDatabase) ExecuteUpdate(ctx context.Context, query string, params *Parameters) (Result, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()
	ctx, done := s.obs.start(ctx, "exec", query, params)

	res, err := s.exec(ctx, query, params)
	if err != nil {
		err = &ExecutionError{Op: "exec", SQL: query, Err: err}
		s.last.set(err)
	}
	done(err)
	return res, err
}

func (s *SqlDatabase) exec(ctx context.Context, query string, params *Parameters) (sql.Result, error) {
	args := s.args(params)
	if s.stmts != nil {
		stmt, release, err := s.stmts.Acquire(ctx, s.db, query)
		if err != nil {
			return nil, err
		}
		defer release()
		return stmt.ExecContext(ctx, args...)
	}
	return s.db.ExecContext(ctx, query, args...)
}

func (s *SqlDatabase) args(params *Parameters) []any {
	if s.dialect.Named() {
		return params.Named()
	}
	return params.Values()
}

// PingContext verifies the connection to the database is alive.
func (s *SqlDatabase) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SqlDatabase) LastError() error { return s.last.get() }

// Close releases cached statements and closes the database.
func (s *SqlDatabase) Close() error {
	if s.stmts != nil {
		_ = s.stmts.Close()
	}
	return s.db.Close()
}

// collect drains rows, advancing through every result set and keeping the
// last one.
func collect(rows *sql.Rows) (*result.ResultMap, error) {
	var rm *result.ResultMap
	for {
		current, err := readSet(rows)
		if err != nil {
			return nil, err
		}
		rm = current
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rm, nil
}

func readSet(rows *sql.Rows) (*result.ResultMap, error) {
	cts, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	headers := make([]string, len(cts))
	types := make([]result.ColumnType, len(cts))
	for i, ct := range cts {
		headers[i] = ct.Name()
		types[i] = result.ColumnType{
			Name:         ct.Name(),
			DatabaseType: ct.DatabaseTypeName(),
			ScanType:     ct.ScanType(),
		}
	}

	rm, err := result.NewResultMap(headers, types)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		values := make([]any, len(headers))
		dest := make([]any, len(headers))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if _, err := rm.AddResult(values...); err != nil {
			return nil, err
		}
	}
	return rm, rows.Err()
}

// Assert that SqlDatabase implements the Database interface.
var _ Database = (*SqlDatabase)(nil)

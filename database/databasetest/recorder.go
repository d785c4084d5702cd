// Package databasetest provides an in-memory database.Database that records
// statements instead of running them.
package databasetest

import (
	"context"
	"sync"

	"github.com/Konsultn-Engineering/sqlib/database"
	"github.com/Konsultn-Engineering/sqlib/dialect"
	"github.com/Konsultn-Engineering/sqlib/result"
)

// Statement is one recorded call.
type Statement struct {
	// Kind is "query" or "exec".
	Kind string
	SQL  string
	// Names and Values are the bound parameters in bind order.
	Names  []string
	Values []any
}

// Recorder implements database.Database. Queries return the queued Results
// in order and an empty result map once the queue is drained.
type Recorder struct {
	mu sync.Mutex

	D            dialect.Dialect
	Statements   []Statement
	Results      []*result.ResultMap
	InsertID     int64
	RowsAffected int64
	// Err, when set, fails every call.
	Err error
	// FailOn, when set, fails calls for which it returns an error.
	FailOn func(sql string) error

	last error
}

// New returns a recorder rendering for d.
func New(d dialect.Dialect) *Recorder {
	return &Recorder{D: d}
}

func (r *Recorder) Dialect() dialect.Dialect { return r.D }

func (r *Recorder) record(kind, sql string, params *database.Parameters) error {
	r.Statements = append(r.Statements, Statement{
		Kind:   kind,
		SQL:    sql,
		Names:  params.Names(),
		Values: params.Values(),
	})
	err := r.Err
	if err == nil && r.FailOn != nil {
		err = r.FailOn(sql)
	}
	if err != nil {
		err = &database.ExecutionError{Op: kind, SQL: sql, Err: err}
		r.last = err
	}
	return err
}

func (r *Recorder) ExecuteQuery(_ context.Context, sql string, params *database.Parameters) (*result.ResultMap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.record("query", sql, params); err != nil {
		return nil, err
	}
	if len(r.Results) == 0 {
		return result.NewResultMap(nil, nil)
	}
	rm := r.Results[0]
	r.Results = r.Results[1:]
	return rm, nil
}

func (r *Recorder) ExecuteUpdate(_ context.Context, sql string, params *database.Parameters) (database.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.record("exec", sql, params); err != nil {
		return nil, err
	}
	return execResult{id: r.InsertID, affected: r.RowsAffected}, nil
}

func (r *Recorder) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Recorder) Close() error { return nil }

// Queue appends a result map with the given headers and rows to Results.
func (r *Recorder) Queue(headers []string, rows ...[]any) error {
	rm, err := result.NewResultMap(headers, nil)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := rm.AddResult(row...); err != nil {
			return err
		}
	}
	r.mu.Lock()
	r.Results = append(r.Results, rm)
	r.mu.Unlock()
	return nil
}

// SQL returns the recorded statements' text in order.
func (r *Recorder) SQL() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Statements))
	for i, s := range r.Statements {
		out[i] = s.SQL
	}
	return out
}

type execResult struct {
	id       int64
	affected int64
}

func (e execResult) LastInsertId() (int64, error) { return e.id, nil }
func (e execResult) RowsAffected() (int64, error) { return e.affected, nil }

var _ database.Database = (*Recorder)(nil)

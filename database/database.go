package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/Konsultn-Engineering/sqlib/dialect"
	"github.com/Konsultn-Engineering/sqlib/result"
)

// Database executes rendered statements. It owns the connection, its pooling
// and its timeouts; callers only hand it SQL text and a parameter bag.
type Database interface {
	Dialect() dialect.Dialect
	// ExecuteQuery runs a statement returning rows. When the statement
	// produces several result sets only the last one is returned.
	ExecuteQuery(ctx context.Context, query string, params *Parameters) (*result.ResultMap, error)
	// ExecuteUpdate runs a statement that returns no rows.
	ExecuteUpdate(ctx context.Context, query string, params *Parameters) (Result, error)
	// LastError returns the most recent execution failure, or nil.
	LastError() error
	Close() error
}

// Result summarizes an executed update. database/sql's sql.Result satisfies it.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// ErrExecution matches every *ExecutionError.
var ErrExecution = errors.New("statement execution failed")

// ExecutionError reports a statement the database rejected or could not run.
type ExecutionError struct {
	Op  string
	SQL string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("database: %s failed: %v", e.Op, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func (e *ExecutionError) Is(target error) bool { return target == ErrExecution }

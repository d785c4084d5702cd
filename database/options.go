package database

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Konsultn-Engineering/sqlib/dialect"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a database adapter.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	queryTimeout   time.Duration
	dialect        dialect.Dialect
	stmtCacheSize  int
}

// WithLogger sets the logger for statement and failure logging.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTracerProvider sets the provider for statement spans.
// Defaults to the global otel provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider sets the provider for statement metrics.
// Defaults to the global otel provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// WithQueryTimeout bounds every statement with a deadline. Zero disables it.
func WithQueryTimeout(d time.Duration) Option {
	return func(o *options) { o.queryTimeout = d }
}

// WithDialect overrides the adapter's dialect.
func WithDialect(d dialect.Dialect) Option {
	return func(o *options) { o.dialect = d }
}

// WithStatementCache keeps up to size prepared statements per database/sql
// handle. Zero disables statement caching. pgx prepares and caches
// statements on its own and ignores this option.
func WithStatementCache(size int) Option {
	return func(o *options) { o.stmtCacheSize = size }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

func (o options) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.queryTimeout)
}

// lastError remembers the most recent execution failure.
type lastError struct {
	mu  sync.Mutex
	err error
}

func (l *lastError) set(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

func (l *lastError) get() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

package cache

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is used when a non-positive size is requested.
const DefaultSize = 256

// Preparer is satisfied by *sql.DB and *sql.Conn.
type Preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// entry counts the callers holding a statement. An evicted statement is
// closed once the last holder releases it.
type entry struct {
	stmt    *sql.Stmt
	refs    atomic.Int32
	evicted atomic.Bool
}

func (e *entry) release() {
	if e.refs.Add(-1) == 0 && e.evicted.Load() {
		_ = e.stmt.Close()
	}
}

func (e *entry) evict() {
	e.evicted.Store(true)
	if e.refs.Load() == 0 {
		_ = e.stmt.Close()
	}
}

// StatementCache keeps prepared statements keyed by the fingerprint of their
// SQL text. Evicted statements are closed when no caller holds them.
type StatementCache struct {
	cache *lru.Cache[uint64, *entry]
	mu    sync.RWMutex
}

func NewStatementCache(size int) *StatementCache {
	if size <= 0 {
		size = DefaultSize
	}
	cache, _ := lru.NewWithEvict(size, func(_ uint64, e *entry) {
		e.evict()
	})

	return &StatementCache{
		cache: cache,
	}
}

func (s *StatementCache) Get(query string) (*sql.Stmt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.cache.Get(Key(query))
	if !ok {
		return nil, false
	}
	return e.stmt, true
}

// Acquire returns the cached statement for query, preparing it on a miss.
// The statement stays open until release is called, even if it is evicted
// in the meantime.
func (s *StatementCache) Acquire(ctx context.Context, db Preparer, query string) (stmt *sql.Stmt, release func(), err error) {
	key := Key(query)

	// Evictions only happen under the write lock, so taking a reference
	// under the read lock is safe.
	s.mu.RLock()
	if e, ok := s.cache.Get(key); ok {
		e.refs.Add(1)
		s.mu.RUnlock()
		return e.stmt, e.release, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.cache.Get(key); ok {
		e.refs.Add(1)
		return e.stmt, e.release, nil
	}

	prepared, err := db.PrepareContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	e := &entry{stmt: prepared}
	e.refs.Add(1)
	s.cache.Add(key, e)
	return e.stmt, e.release, nil
}

// Len reports how many statements are cached.
func (s *StatementCache) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cache.Len()
}

// Close evicts every cached statement. Statements still held are closed on
// release.
func (s *StatementCache) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Purge()
	return nil
}

package schema

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Registry memoizes ModelInfo per type. Concurrent first lookups of a type
// share a single construction, so a type never has two live entries.
type Registry struct {
	mu    sync.RWMutex
	infos map[reflect.Type]*ModelInfo
	group singleflight.Group
}

func NewRegistry() *Registry {
	return &Registry{infos: make(map[reflect.Type]*ModelInfo)}
}

var defaultRegistry = NewRegistry()

// Lookup returns the cached mapping of t, building it on first use. Pointer
// types resolve to their element type. Failed builds are not cached.
func (r *Registry) Lookup(t reflect.Type) (*ModelInfo, error) {
	t = indirect(t)

	r.mu.RLock()
	info, ok := r.infos[t]
	r.mu.RUnlock()
	if ok {
		return info, nil
	}

	// reflect.Type values are unique per type; their address is a stable key.
	v, err, _ := r.group.Do(fmt.Sprintf("%p", t), func() (any, error) {
		r.mu.RLock()
		info, ok := r.infos[t]
		r.mu.RUnlock()
		if ok {
			return info, nil
		}

		info, err := NewModelInfo(t)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if existing, ok := r.infos[t]; ok {
			return existing, nil
		}
		r.infos[t] = info
		return info, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ModelInfo), nil
}

// Len reports how many types are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.infos)
}

// Lookup resolves t through the process-wide registry.
func Lookup(t reflect.Type) (*ModelInfo, error) {
	return defaultRegistry.Lookup(t)
}

// Of returns the mapping of T from the process-wide registry.
func Of[T any]() (*ModelInfo, error) {
	return Lookup(reflect.TypeOf((*T)(nil)).Elem())
}

// Register builds and caches T's mapping ahead of first use, surfacing
// configuration errors at startup.
func Register[T any]() error {
	_, err := Of[T]()
	return err
}

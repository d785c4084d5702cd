package cache

import "github.com/cespare/xxhash/v2"

// Key fingerprints a statement's SQL text.
func Key(query string) uint64 {
	return xxhash.Sum64String(query)
}

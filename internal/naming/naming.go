// Package naming converts identifiers written in code into the naming
// convention of the database schema. Conversions are memoized in a shared
// LRU cache so repeated builds of the same statement do not redo string work.
package naming

import (
	"github.com/go-openapi/inflect"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Conversion transforms logical table and column names into their physical
// spellings. Implementations must be safe for concurrent use. Conversions
// apply only to identifiers passed through structured builder arguments;
// raw SQL fragments are never rewritten.
type Conversion interface {
	// ConvertTableName converts a table identifier.
	ConvertTableName(name string) string
	// ConvertColumnName converts a column identifier.
	ConvertColumnName(name string) string
}

// cacheSize bounds the shared conversion cache. Identifier sets are small in
// practice; evictions only cost a recomputation.
const cacheSize = 4096

type cacheKey struct {
	strategy string
	name     string
}

var cache *lru.Cache[cacheKey, string]

func init() {
	// lru.New fails only for non-positive sizes.
	cache, _ = lru.New[cacheKey, string](cacheSize)
}

// memoize returns the cached conversion of name under strategy, computing
// and storing it on a miss. The cache is shared across all conversions and
// safe for concurrent use.
func memoize(strategy, name string, convert func(string) string) string {
	key := cacheKey{strategy: strategy, name: name}
	if v, ok := cache.Get(key); ok {
		return v
	}
	v := convert(name)
	cache.Add(key, v)
	return v
}

// Identity passes identifiers through unchanged. It is the default conversion.
type Identity struct{}

// ConvertTableName returns name unchanged.
func (Identity) ConvertTableName(name string) string { return name }

// ConvertColumnName returns name unchanged.
func (Identity) ConvertColumnName(name string) string { return name }

// SnakeCase converts CamelCase identifiers to snake_case
// (UserProfile -> user_profile).
type SnakeCase struct{}

// ConvertTableName converts a table identifier to snake_case.
func (SnakeCase) ConvertTableName(name string) string {
	return memoize("snake", name, inflect.Underscore)
}

// ConvertColumnName converts a column identifier to snake_case.
func (SnakeCase) ConvertColumnName(name string) string {
	return memoize("snake", name, inflect.Underscore)
}

// CamelCase converts snake_case identifiers to lowerCamelCase
// (user_profile -> userProfile).
type CamelCase struct{}

// ConvertTableName converts a table identifier to lowerCamelCase.
func (CamelCase) ConvertTableName(name string) string {
	return memoize("camel", name, inflect.CamelizeDownFirst)
}

// ConvertColumnName converts a column identifier to lowerCamelCase.
func (CamelCase) ConvertColumnName(name string) string {
	return memoize("camel", name, inflect.CamelizeDownFirst)
}

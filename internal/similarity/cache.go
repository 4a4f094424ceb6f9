package similarity

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes an oracle for the duration of one search.
// Concurrent requests for the same key share a single call to the
// wrapped oracle.
type Cache struct {
	base   Oracle
	mu     sync.RWMutex
	scores map[string]float64
	flight singleflight.Group
}

// NewCache wraps base with an empty cache.
func NewCache(base Oracle) *Cache {
	return &Cache{
		base:   base,
		scores: make(map[string]float64),
	}
}

// Score implements Oracle.
func (c *Cache) Score(ctx context.Context, a, b string, interests []string) float64 {
	key := cacheKey(a, b, interests)

	c.mu.RLock()
	v, ok := c.scores[key]
	c.mu.RUnlock()
	if ok {
		return v
	}

	result, _, _ := c.flight.Do(key, func() (any, error) {
		// Another caller may have filled the entry while we waited.
		c.mu.RLock()
		v, ok := c.scores[key]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}

		v = c.base.Score(ctx, a, b, interests)
		c.mu.Lock()
		c.scores[key] = v
		c.mu.Unlock()
		return v, nil
	})

	score, ok := result.(float64)
	if !ok {
		return 0
	}
	return score
}

// Len returns the number of cached scores.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.scores)
}

// cacheKey builds an unambiguous key from the request. Lengths are
// included so that separators inside labels cannot collide.
func cacheKey(a, b string, interests []string) string {
	var sb strings.Builder
	for _, part := range append([]string{a, b}, interests...) {
		sb.WriteString(strconv.Itoa(len(part)))
		sb.WriteByte(':')
		sb.WriteString(part)
	}
	return sb.String()
}

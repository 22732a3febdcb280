// Package answercache caches positive resolution results in an LRU, keyed by
// question name, type, and class. Zone data is immutable after load, so
// cached entries never go stale; the LRU bound only caps memory. Negative
// and error results are never cached, so every miss re-runs the full
// resolution path and keeps its distinct status observable.
package answercache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/az-dns/internal/dns/domain"
)

type answerCache struct {
	lru *lru.Cache[string, domain.ResolutionResult]
}

// New returns an answer cache of the given size using an LRU backing store.
func New(size int) (*answerCache, error) {
	cache, err := lru.New[string, domain.ResolutionResult](size)
	if err != nil {
		return nil, err
	}
	return &answerCache{lru: cache}, nil
}

// Set stores a resolution result for the question. Results that are not
// positive answers are ignored.
func (c *answerCache) Set(q domain.Question, result domain.ResolutionResult) {
	if !result.IsPositive() {
		return
	}
	c.lru.Add(q.Key(), result)
}

// Get retrieves a cached result for the question.
func (c *answerCache) Get(q domain.Question) (domain.ResolutionResult, bool) {
	return c.lru.Get(q.Key())
}

// Len returns the number of cached entries.
func (c *answerCache) Len() int {
	return c.lru.Len()
}

// Purge drops every cached entry.
func (c *answerCache) Purge() {
	c.lru.Purge()
}

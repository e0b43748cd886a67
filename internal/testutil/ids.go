package testutil

import (
	"fmt"
	"sync"
	"time"
)

// SequenceGenerator mints ids "<prefix>-1", "<prefix>-2", ... regardless
// of owner or time. Used by the scenario harness and tests for
// byte-identical traces.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator. An empty prefix selects "act".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "act"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate implements action.IDGenerator.
func (g *SequenceGenerator) Generate(string, time.Time) string {
	return g.Next()
}

// Next returns the next id. It matches the ledger's record-id hook.
func (g *SequenceGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// FixedGenerator returns predetermined ids in order.
//
// Panics if all ids have been consumed. This is a fail-fast approach
// to catch test misconfiguration (test staged more actions than expected).
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate implements action.IDGenerator.
func (g *FixedGenerator) Generate(string, time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/pokerleague/internal/dependencies/idgen"
)

// MockIDGenerator is a mock implementation of idgen.Generator for testing
type MockIDGenerator struct {
	mu sync.Mutex

	// Queued is a queue of IDs to hand out before falling back to sequential IDs
	Queued []string
	index  int

	prefix string
	next   int
}

// Ensure MockIDGenerator implements Generator
var _ idgen.Generator = (*MockIDGenerator)(nil)

// NewMockIDGenerator creates a generator producing prefix-1, prefix-2, ...
func NewMockIDGenerator(prefix string) *MockIDGenerator {
	return &MockIDGenerator{prefix: prefix}
}

// NewID returns the next queued ID, or the next sequential ID if none remain
func (g *MockIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.index < len(g.Queued) {
		id := g.Queued[g.index]
		g.index++
		return id
	}
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next)
}

// Queue adds IDs to the result queue
func (g *MockIDGenerator) Queue(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Queued = append(g.Queued, ids...)
}

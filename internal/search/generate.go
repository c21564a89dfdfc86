// Package search contains the flag search engine: candidate generation
// with conflict pruning, trial bookkeeping, and the exhaustive and
// progressive strategies. Trials run strictly sequentially by default;
// a bounded parallel variant of the exhaustive strategy lives in
// parallel.go.
package search

import (
	"obforge/internal/catalog"
)

// Generator lazily enumerates conflict-free flag combinations.
//
// Enumeration order is an observable contract: combinations are produced
// by increasing subset size, and in catalog index order within each size.
// Search tie-breaks ("first seen wins") depend on it.
type Generator struct {
	flags   []string
	cat     *catalog.Catalog
	maxSize int

	size    int   // current subset size
	indices []int // current combination, as indices into flags
	done    bool
}

// NewGenerator creates a generator over the given flag strings.
// minSize is clamped to >= 1; maxSize <= 0 or > len(flags) means all sizes.
// The catalog supplies the conflict-exclusion groups.
func NewGenerator(flags []string, minSize, maxSize int, cat *catalog.Catalog) *Generator {
	if minSize < 1 {
		minSize = 1
	}
	if maxSize <= 0 || maxSize > len(flags) {
		maxSize = len(flags)
	}

	g := &Generator{
		flags:   flags,
		cat:     cat,
		maxSize: maxSize,
		size:    minSize,
	}
	if minSize > maxSize || len(flags) == 0 {
		g.done = true
	}
	return g
}

// Next returns the next conflict-free combination, or false when the
// space is exhausted. The returned slice is owned by the caller.
func (g *Generator) Next() ([]string, bool) {
	for {
		indices, ok := g.advance()
		if !ok {
			return nil, false
		}

		combo := make([]string, len(indices))
		for i, idx := range indices {
			combo[i] = g.flags[idx]
		}

		if g.cat != nil && g.cat.HasConflict(catalog.ExpandTokens(combo)) {
			continue
		}
		return combo, true
	}
}

// Collect drains the generator into a slice. Intended for tests and
// counting; production callers should consume lazily.
func (g *Generator) Collect() [][]string {
	var all [][]string
	for {
		combo, ok := g.Next()
		if !ok {
			return all
		}
		all = append(all, combo)
	}
}

// advance steps the index vector to the next combination in order,
// moving to the next subset size when the current one is exhausted.
func (g *Generator) advance() ([]int, bool) {
	if g.done {
		return nil, false
	}

	n := len(g.flags)

	// First combination of the current size.
	if g.indices == nil {
		g.indices = make([]int, g.size)
		for i := range g.indices {
			g.indices[i] = i
		}
		return g.indices, true
	}

	// Standard odometer step over k-combinations of n.
	k := len(g.indices)
	i := k - 1
	for i >= 0 && g.indices[i] == n-k+i {
		i--
	}
	if i < 0 {
		// Size exhausted; move to the next size.
		g.size++
		g.indices = nil
		if g.size > g.maxSize {
			g.done = true
			return nil, false
		}
		return g.advance()
	}

	g.indices[i]++
	for j := i + 1; j < k; j++ {
		g.indices[j] = g.indices[j-1] + 1
	}
	return g.indices, true
}

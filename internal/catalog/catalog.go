// Package catalog holds the compiler flag knowledge base: candidate flag
// records with category/priority metadata, bundled flag options, and the
// conflict-exclusion groups that keep mutually incompatible flags out of a
// single candidate. Catalogs are plain data passed to the search layer, so
// tests can run with a three-entry catalog as easily as the built-in one.
package catalog

import (
	"sort"
	"strings"
)

// Entry is a single catalog record describing one candidate flag string.
// An Entry's Flag may expand to multiple command-line tokens
// (e.g., "-mllvm -fla").
type Entry struct {
	// Flag is the flag string as passed to the compiler.
	Flag string `yaml:"flag" json:"flag"`

	// Category groups related flags (optimization_level, inlining, lto, ...).
	Category string `yaml:"category" json:"category"`

	// Priority is the heuristic tier: baseline, low, medium, high, highest.
	Priority string `yaml:"priority" json:"priority"`

	// Score is the heuristic base obfuscation score (1-10) from research.
	Score int `yaml:"score" json:"score"`

	// Description is a human-readable explanation.
	Description string `yaml:"description" json:"description"`
}

// Tokens expands the entry's flag string into command-line tokens.
func (e Entry) Tokens() []string {
	return strings.Fields(e.Flag)
}

// Option represents a named flag bundle, the unit progressive tuning
// accepts or rejects as a whole.
type Option struct {
	// Identifier is a short stable name ("O3", "NoUnwind").
	Identifier string `yaml:"identifier" json:"identifier"`

	// Flags are the command-line tokens the option contributes.
	Flags []string `yaml:"flags" json:"flags"`

	// Description is a human-readable explanation.
	Description string `yaml:"description" json:"description"`
}

// ConflictGroup is a set of tokens that must not co-occur in one candidate.
type ConflictGroup []string

// contains reports whether the group holds the given token.
func (g ConflictGroup) contains(token string) bool {
	for _, t := range g {
		if t == token {
			return true
		}
	}
	return false
}

// Catalog is an ordered flag database plus its conflict rules.
// Order is significant: it fixes candidate enumeration order and
// therefore search tie-breaks.
type Catalog struct {
	Entries   []Entry         `yaml:"entries" json:"entries"`
	Conflicts []ConflictGroup `yaml:"conflicts" json:"conflicts"`
}

// Flags returns the flag strings of all entries, in catalog order.
func (c *Catalog) Flags() []string {
	out := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.Flag
	}
	return out
}

// Filter returns a copy keeping only entries whose category and priority
// match the given sets. Empty sets match everything. Conflict rules are
// carried over unchanged.
func (c *Catalog) Filter(categories, priorities []string) *Catalog {
	catSet := toSet(categories)
	priSet := toSet(priorities)

	filtered := &Catalog{Conflicts: c.Conflicts}
	for _, e := range c.Entries {
		if len(catSet) > 0 && !catSet[e.Category] {
			continue
		}
		if len(priSet) > 0 && !priSet[e.Priority] {
			continue
		}
		filtered.Entries = append(filtered.Entries, e)
	}
	return filtered
}

// SortedByScore returns the entries ordered by heuristic base score,
// highest first. The sort is stable so catalog order still breaks ties.
func (c *Catalog) SortedByScore() []Entry {
	out := make([]Entry, len(c.Entries))
	copy(out, c.Entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// HasConflict reports whether the token sequence contains two or more
// tokens from any single conflict group.
func (c *Catalog) HasConflict(tokens []string) bool {
	for _, group := range c.Conflicts {
		hits := 0
		for _, token := range tokens {
			if group.contains(token) {
				hits++
				if hits > 1 {
					return true
				}
			}
		}
	}
	return false
}

// ExpandTokens splits flag strings into individual command-line tokens,
// skipping empties. "-mllvm -fla" becomes two tokens.
func ExpandTokens(flagStrings []string) []string {
	var expanded []string
	for _, raw := range flagStrings {
		if raw == "" {
			continue
		}
		expanded = append(expanded, strings.Fields(raw)...)
	}
	return expanded
}

// MergeFlags appends flag strings not already present, preserving order.
// De-duplication works on whole flag strings, never on their expanded
// tokens: "-mllvm -fla" and "-mllvm -bcf" are distinct flags and both
// keep their "-mllvm" prefix when the merged set is expanded.
func MergeFlags(dst []string, flags []string) []string {
	out := append([]string(nil), dst...)
	for _, f := range flags {
		if !containsToken(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// ContainsAll reports whether every flag string is already in the set.
func ContainsAll(set []string, flags []string) bool {
	for _, f := range flags {
		if !containsToken(set, f) {
			return false
		}
	}
	return true
}

func containsToken(set []string, token string) bool {
	for _, s := range set {
		if s == token {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

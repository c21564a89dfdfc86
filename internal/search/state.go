package search

import (
	"math"
	"sync"

	"obforge/internal/inspect"
)

// Record captures the outcome of one trial.
type Record struct {
	// Index is the 1-based position in generation order.
	Index int `json:"index"`

	// Flags are the candidate's catalog flag strings (base flags excluded).
	Flags []string `json:"flags"`

	// Compiled reports whether the compiler accepted the candidate.
	Compiled bool `json:"compiled"`

	// Diagnostic is the compiler or inspection failure text, if any.
	Diagnostic string `json:"diagnostic,omitempty"`

	// BinaryPath is where the candidate binary was written.
	BinaryPath string `json:"binary_path,omitempty"`

	// Metrics is the candidate's static-analysis record (nil on failure).
	Metrics *inspect.Metrics `json:"metrics,omitempty"`

	// Score is the obfuscation score relative to the run baseline.
	Score float64 `json:"score"`

	// Accepted marks progressively locked-in candidates.
	Accepted bool `json:"accepted,omitempty"`

	// Improvement is the score delta that drove a progressive decision.
	Improvement float64 `json:"improvement,omitempty"`
}

// Sink receives every finished trial record, typically for persistence.
type Sink interface {
	RecordTrial(rec Record) error
}

// State tracks one search run. It is exported at run end as the engine's
// primary result. Mutators are safe for concurrent use so the parallel
// exhaustive variant can share one State.
type State struct {
	mu sync.Mutex

	// Baseline is the reference metrics every score is relative to.
	Baseline *inspect.Metrics `json:"baseline"`

	// BaselinePath is the baseline binary location.
	BaselinePath string `json:"baseline_path"`

	// Tested counts candidates evaluated (including failures).
	Tested int `json:"tested"`

	// Failed counts candidates the toolchain rejected or that produced
	// no usable metrics.
	Failed int `json:"failed"`

	// Total is the number of candidates the generator produced.
	Total int `json:"total"`

	// Best is the highest-scoring successful trial, ties resolved to the
	// earliest candidate in generation order.
	Best *Record `json:"best,omitempty"`

	// Accepted holds the progressively locked-in flag strings. The set
	// only grows; a locked-in flag is never removed.
	Accepted []string `json:"accepted,omitempty"`

	// History is every trial in completion order.
	History []Record `json:"history"`
}

// Append records a finished trial.
func (s *State) Append(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Tested++
	if !rec.Compiled || rec.Metrics == nil {
		s.Failed++
	}
	s.History = append(s.History, rec)
}

// UpdateBest installs rec as the running best on strict improvement.
// Equal scores keep the candidate with the lower generation index, which
// for sequential evaluation is the first seen. Returns true when rec
// became the new best, along with the path of the displaced binary.
func (s *State) UpdateBest(rec Record) (bool, string) {
	if !rec.Compiled || rec.Metrics == nil {
		return false, ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Best != nil {
		if rec.Score < s.Best.Score {
			return false, ""
		}
		if rec.Score == s.Best.Score && rec.Index >= s.Best.Index {
			return false, ""
		}
	}

	displaced := ""
	if s.Best != nil {
		displaced = s.Best.BinaryPath
	}
	best := rec
	s.Best = &best
	return true, displaced
}

// ClearBinary blanks the stored path of the history record that produced
// the given binary, reporting whether a record matched.
func (s *State) ClearBinary(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.History {
		if s.History[i].BinaryPath == path {
			s.History[i].BinaryPath = ""
			return true
		}
	}
	return false
}

// PruneBinaryRefs blanks every history binary path except the best's.
// Used when only the best binary is retained on disk, where completion
// order can append a displaced record after its binary was removed.
func (s *State) PruneBinaryRefs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.History {
		if s.Best != nil && s.History[i].Index == s.Best.Index {
			continue
		}
		s.History[i].BinaryPath = ""
	}
}

// SuccessRate returns the percentage of tested candidates that compiled
// and produced metrics, rounded to two decimals.
func (s *State) SuccessRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Tested == 0 {
		return 0
	}
	rate := float64(s.Tested-s.Failed) / float64(s.Tested) * 100
	return math.Round(rate*100) / 100
}

// Snapshot returns copies of the counters for progress display.
func (s *State) Snapshot() (tested, failed int, best *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Best != nil {
		b := *s.Best
		best = &b
	}
	return s.Tested, s.Failed, best
}

// Package report assembles the end-of-run result document: a manifest of
// what ran, aggregate counters, the top-scoring candidates and the full
// trial history, exported as indented JSON.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"obforge/internal/inspect"
	"obforge/internal/search"
	"obforge/internal/verify"
)

// LeaderboardSize is how many top candidates the export ranks.
const LeaderboardSize = 10

// Manifest identifies a run and the environment it executed in.
type Manifest struct {
	RunID      string    `json:"run_id"`
	Source     string    `json:"source"`
	Compiler   string    `json:"compiler"`
	Provider   string    `json:"provider"`
	Strategy   string    `json:"strategy"`
	BaseFlags  []string  `json:"base_flags,omitempty"`
	Sensitive  []string  `json:"sensitive_strings,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Summary aggregates the run counters.
type Summary struct {
	Total       int      `json:"total_candidates"`
	Tested      int      `json:"tested"`
	Failed      int      `json:"failed"`
	SuccessRate float64  `json:"success_rate"`
	BestScore   float64  `json:"best_score"`
	BestFlags   []string `json:"best_flags,omitempty"`
	BestBinary  string   `json:"best_binary,omitempty"`
}

// Entry is one leaderboard row.
type Entry struct {
	Rank  int      `json:"rank"`
	Index int      `json:"index"`
	Flags []string `json:"flags"`
	Score float64  `json:"score"`
}

// Report is the full exported result document.
type Report struct {
	Manifest     Manifest         `json:"manifest"`
	Summary      Summary          `json:"summary"`
	Baseline     *inspect.Metrics `json:"baseline,omitempty"`
	Leaderboard  []Entry          `json:"leaderboard,omitempty"`
	History      []search.Record  `json:"history"`
	Verification *verify.Report   `json:"verification,omitempty"`
}

// Build assembles a report from the final search state.
func Build(manifest Manifest, state *search.State) *Report {
	r := &Report{
		Manifest: manifest,
		Summary: Summary{
			Total:       state.Total,
			Tested:      state.Tested,
			Failed:      state.Failed,
			SuccessRate: state.SuccessRate(),
		},
		Baseline: state.Baseline,
		History:  state.History,
	}
	if state.Best != nil {
		r.Summary.BestScore = state.Best.Score
		r.Summary.BestFlags = state.Best.Flags
		r.Summary.BestBinary = state.Best.BinaryPath
	}
	r.Leaderboard = leaderboard(state.History, LeaderboardSize)
	return r
}

// Save writes the report as indented JSON.
func (r *Report) Save(path string) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

// leaderboard ranks the successful trials by score, ties broken by
// generation index so the ordering is stable across runs.
func leaderboard(history []search.Record, size int) []Entry {
	ranked := make([]search.Record, 0, len(history))
	for _, rec := range history {
		if rec.Compiled && rec.Metrics != nil {
			ranked = append(ranked, rec)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Index < ranked[j].Index
	})
	if len(ranked) > size {
		ranked = ranked[:size]
	}

	out := make([]Entry, len(ranked))
	for i, rec := range ranked {
		out[i] = Entry{Rank: i + 1, Index: rec.Index, Flags: rec.Flags, Score: rec.Score}
	}
	return out
}

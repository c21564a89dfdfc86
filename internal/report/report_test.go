package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"obforge/internal/inspect"
	"obforge/internal/search"
)

func testManifest() Manifest {
	return Manifest{
		RunID:      "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		Source:     "main.c",
		Compiler:   "clang",
		Provider:   "radare2",
		Strategy:   "exhaustive",
		StartedAt:  time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 1, 10, 5, 0, 0, time.UTC),
	}
}

func testState() *search.State {
	state := &search.State{
		Baseline:     &inspect.Metrics{Size: 1000, StringCount: 100},
		BaselinePath: "/out/baseline",
		Total:        4,
	}
	records := []search.Record{
		{Index: 1, Flags: []string{"-O3"}, Compiled: true, Score: 6,
			Metrics: &inspect.Metrics{Size: 900}, BinaryPath: "/out/candidate_00001"},
		{Index: 2, Flags: []string{"-fbogus"}, Diagnostic: "unknown argument"},
		{Index: 3, Flags: []string{"-O3", "-flto"}, Compiled: true, Score: 24,
			Metrics: &inspect.Metrics{Size: 800}, BinaryPath: "/out/candidate_00003"},
		{Index: 4, Flags: []string{"-Os"}, Compiled: true, Score: 24,
			Metrics: &inspect.Metrics{Size: 700}, BinaryPath: "/out/candidate_00004"},
	}
	for _, rec := range records {
		state.Append(rec)
	}
	for _, rec := range records {
		state.UpdateBest(rec)
	}
	return state
}

func TestBuild(t *testing.T) {
	rep := Build(testManifest(), testState())

	if rep.Summary.Total != 4 || rep.Summary.Tested != 4 || rep.Summary.Failed != 1 {
		t.Errorf("Summary counters wrong: %+v", rep.Summary)
	}
	if rep.Summary.SuccessRate != 75 {
		t.Errorf("SuccessRate = %v, want 75", rep.Summary.SuccessRate)
	}
	if rep.Summary.BestScore != 24 {
		t.Errorf("BestScore = %v, want 24", rep.Summary.BestScore)
	}
	if diff := cmp.Diff([]string{"-O3", "-flto"}, rep.Summary.BestFlags); diff != "" {
		t.Errorf("BestFlags mismatch (-want +got):\n%s", diff)
	}
	if len(rep.History) != 4 {
		t.Errorf("Full history not embedded: %d records", len(rep.History))
	}
	if rep.Baseline == nil || rep.Baseline.Size != 1000 {
		t.Error("Baseline metrics not embedded")
	}
}

func TestBuild_Leaderboard(t *testing.T) {
	rep := Build(testManifest(), testState())

	// Failed trials excluded; equal scores ranked by generation index
	if len(rep.Leaderboard) != 3 {
		t.Fatalf("Leaderboard size = %d, want 3", len(rep.Leaderboard))
	}
	if rep.Leaderboard[0].Index != 3 || rep.Leaderboard[1].Index != 4 || rep.Leaderboard[2].Index != 1 {
		t.Errorf("Leaderboard order wrong: %+v", rep.Leaderboard)
	}
	for i, e := range rep.Leaderboard {
		if e.Rank != i+1 {
			t.Errorf("Rank %d at position %d", e.Rank, i)
		}
	}
}

func TestBuild_LeaderboardTruncation(t *testing.T) {
	state := &search.State{}
	for i := 1; i <= LeaderboardSize+5; i++ {
		state.Append(search.Record{
			Index: i, Compiled: true, Score: float64(i),
			Metrics: &inspect.Metrics{},
		})
	}

	rep := Build(testManifest(), state)
	if len(rep.Leaderboard) != LeaderboardSize {
		t.Errorf("Leaderboard = %d entries, want %d", len(rep.Leaderboard), LeaderboardSize)
	}
	if rep.Leaderboard[0].Score != float64(LeaderboardSize+5) {
		t.Errorf("Best score not first: %v", rep.Leaderboard[0].Score)
	}
}

func TestBuild_NoBest(t *testing.T) {
	state := &search.State{Total: 1}
	state.Append(search.Record{Index: 1, Diagnostic: "rejected"})

	rep := Build(testManifest(), state)
	if rep.Summary.BestScore != 0 || rep.Summary.BestFlags != nil {
		t.Errorf("Expected empty best summary: %+v", rep.Summary)
	}
	if len(rep.Leaderboard) != 0 {
		t.Errorf("Expected empty leaderboard: %+v", rep.Leaderboard)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	rep := Build(testManifest(), testState())

	if err := rep.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Report not written: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Report not valid JSON: %v", err)
	}
	if decoded.Manifest.RunID != rep.Manifest.RunID {
		t.Errorf("RunID lost in export: %q", decoded.Manifest.RunID)
	}
	if len(decoded.History) != 4 {
		t.Errorf("History lost in export: %d records", len(decoded.History))
	}
}

func TestSave_BadPath(t *testing.T) {
	rep := Build(testManifest(), testState())
	if err := rep.Save(filepath.Join(t.TempDir(), "no", "dir", "report.json")); err == nil {
		t.Fatal("Expected error for unwritable path")
	}
}

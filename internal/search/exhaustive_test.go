package search

import (
	"context"
	"os"
	"strings"
	"testing"

	"obforge/internal/catalog"
	"obforge/internal/inspect"
)

func plainCatalog(flags ...string) *catalog.Catalog {
	cat := &catalog.Catalog{}
	for _, f := range flags {
		cat.Entries = append(cat.Entries, catalog.Entry{Flag: f})
	}
	return cat
}

func TestExhaustive(t *testing.T) {
	compiler := &fakeCompiler{rejects: map[string]string{
		"-c":    "bad flag",
		"-a -c": "bad flag",
		"-b -c": "bad flag",
	}}
	provider := &fakeProvider{metrics: map[string]*inspect.Metrics{
		"":      baselineM(),
		"-a":    withStrings(80), // score 6
		"-b":    withStrings(40), // score 18
		"-a -b": withStrings(20), // score 24
	}}
	sink := &recordingSink{}

	e := newTestEngine(t, compiler, provider, Options{Sink: sink})
	state, err := e.Exhaustive(context.Background(), plainCatalog("-a", "-b", "-c"), 1, 2)
	if err != nil {
		t.Fatalf("Exhaustive failed: %v", err)
	}

	if state.Total != 6 {
		t.Errorf("Total = %d, want 6", state.Total)
	}
	if state.Tested != 6 {
		t.Errorf("Tested = %d, want 6", state.Tested)
	}
	if state.Failed != 3 {
		t.Errorf("Failed = %d, want 3", state.Failed)
	}
	if state.SuccessRate() != 50 {
		t.Errorf("SuccessRate = %v, want 50", state.SuccessRate())
	}

	if state.Best == nil {
		t.Fatal("No best candidate")
	}
	if got := strings.Join(state.Best.Flags, " "); got != "-a -b" {
		t.Errorf("Best flags = %q, want \"-a -b\"", got)
	}
	if state.Best.Score != 24 {
		t.Errorf("Best score = %v, want 24", state.Best.Score)
	}

	// Only the best binary and the baseline survive on disk
	if _, err := os.Stat(state.Best.BinaryPath); err != nil {
		t.Errorf("Best binary missing: %v", err)
	}
	if _, err := os.Stat(state.BaselinePath); err != nil {
		t.Errorf("Baseline binary missing: %v", err)
	}
	for _, rec := range state.History {
		if rec.Index == state.Best.Index || !rec.Compiled {
			continue
		}
		if rec.BinaryPath != "" {
			t.Errorf("Non-best record %d still references %s", rec.Index, rec.BinaryPath)
		}
	}

	if sink.len() != 6 {
		t.Errorf("Sink received %d records, want 6", sink.len())
	}
}

func TestExhaustive_FirstSeenWinsOnTie(t *testing.T) {
	compiler := &fakeCompiler{}
	provider := &fakeProvider{metrics: map[string]*inspect.Metrics{
		"":   baselineM(),
		"-a": withStrings(40),
		"-b": withStrings(40), // same score as -a
	}}

	e := newTestEngine(t, compiler, provider, Options{})
	state, err := e.Exhaustive(context.Background(), plainCatalog("-a", "-b"), 1, 1)
	if err != nil {
		t.Fatalf("Exhaustive failed: %v", err)
	}
	if state.Best.Index != 1 {
		t.Errorf("Tie must keep the first candidate, got index %d", state.Best.Index)
	}
}

func TestExhaustive_ConflictsNeverCompiled(t *testing.T) {
	compiler := &fakeCompiler{}
	provider := &fakeProvider{metrics: map[string]*inspect.Metrics{
		"":   baselineM(),
		"-a": withStrings(80),
		"-b": withStrings(80),
	}}

	cat := plainCatalog("-a", "-b")
	cat.Conflicts = []catalog.ConflictGroup{{"-a", "-b"}}

	e := newTestEngine(t, compiler, provider, Options{})
	state, err := e.Exhaustive(context.Background(), cat, 1, 2)
	if err != nil {
		t.Fatalf("Exhaustive failed: %v", err)
	}
	if state.Total != 2 {
		t.Errorf("Total = %d, want 2 (pair pruned)", state.Total)
	}
	for _, call := range compiler.calls {
		if strings.Join(call, " ") == "-a -b" {
			t.Error("Conflicting candidate reached the compiler")
		}
	}
}

func TestExhaustive_RepeatedPrefixTokensSurvive(t *testing.T) {
	compiler := &fakeCompiler{}
	provider := &fakeProvider{metrics: map[string]*inspect.Metrics{
		"-mllvm -sub":                         baselineM(),
		"-mllvm -sub -mllvm -fla -mllvm -bcf": withStrings(60), // score 12
	}}

	e := newTestEngine(t, compiler, provider, Options{BaseFlags: []string{"-mllvm -sub"}})
	state, err := e.Exhaustive(context.Background(), plainCatalog("-mllvm -fla", "-mllvm -bcf"), 2, 2)
	if err != nil {
		t.Fatalf("Exhaustive failed: %v", err)
	}

	// Each pass keeps its own -mllvm prefix on the command line.
	want := "-mllvm -sub -mllvm -fla -mllvm -bcf"
	seen := false
	for _, call := range compiler.calls {
		if strings.Join(call, " ") == want {
			seen = true
		}
	}
	if !seen {
		t.Fatalf("Compiler never saw %q, calls: %v", want, compiler.calls)
	}

	if state.Best == nil || state.Best.Score != 12 {
		t.Errorf("Expected the pass pair as best with score 12, got %+v", state.Best)
	}
}

func TestExhaustive_BaselineCompileFailureAborts(t *testing.T) {
	compiler := &fakeCompiler{rejects: map[string]string{"": "baseline broken"}}
	provider := &fakeProvider{metrics: map[string]*inspect.Metrics{}}

	e := newTestEngine(t, compiler, provider, Options{})
	if _, err := e.Exhaustive(context.Background(), plainCatalog("-a"), 1, 1); err == nil {
		t.Fatal("Expected error when the baseline does not compile")
	}
}

func TestExhaustive_BaselineInspectionFailureAborts(t *testing.T) {
	compiler := &fakeCompiler{}
	provider := &fakeProvider{
		metrics: map[string]*inspect.Metrics{},
		fails:   map[string]bool{"": true},
	}

	e := newTestEngine(t, compiler, provider, Options{})
	if _, err := e.Exhaustive(context.Background(), plainCatalog("-a"), 1, 1); err == nil {
		t.Fatal("Expected error when the baseline cannot be inspected")
	}
}

func TestExhaustive_InspectionFailureIsTrialFailure(t *testing.T) {
	compiler := &fakeCompiler{}
	provider := &fakeProvider{
		metrics: map[string]*inspect.Metrics{
			"":   baselineM(),
			"-b": withStrings(50),
		},
		fails: map[string]bool{"-a": true},
	}

	e := newTestEngine(t, compiler, provider, Options{})
	state, err := e.Exhaustive(context.Background(), plainCatalog("-a", "-b"), 1, 1)
	if err != nil {
		t.Fatalf("A candidate inspection failure must not abort the run: %v", err)
	}
	if state.Failed != 1 {
		t.Errorf("Failed = %d, want 1", state.Failed)
	}
	if state.Best == nil || state.Best.Index != 2 {
		t.Errorf("Expected -b as best, got %+v", state.Best)
	}

	failed := state.History[0]
	if !strings.Contains(failed.Diagnostic, "inspection failed") {
		t.Errorf("Unexpected diagnostic: %q", failed.Diagnostic)
	}
}

func TestExhaustive_ContextCancellation(t *testing.T) {
	compiler := &fakeCompiler{}
	provider := &fakeProvider{metrics: map[string]*inspect.Metrics{
		"":   baselineM(),
		"-a": withStrings(80),
	}}

	ctx, cancel := context.WithCancel(context.Background())

	e := newTestEngine(t, compiler, provider, Options{
		Progress: func(index, total int, rec Record) { cancel() },
	})
	state, err := e.Exhaustive(ctx, plainCatalog("-a", "-b", "-c"), 1, 1)
	if err == nil {
		t.Fatal("Expected context error")
	}
	if state == nil || state.Tested != 1 {
		t.Errorf("Expected exactly one trial before cancellation")
	}
}

func TestExhaustive_DisplacedBestClearedFromHistory(t *testing.T) {
	compiler := &fakeCompiler{}
	provider := &fakeProvider{metrics: map[string]*inspect.Metrics{
		"":   baselineM(),
		"-a": withStrings(80), // score 6, best until displaced
		"-b": withStrings(40), // score 18, final best
	}}
	e := newTestEngine(t, compiler, provider, Options{})
	state, err := e.Exhaustive(context.Background(), plainCatalog("-a", "-b"), 1, 1)
	if err != nil {
		t.Fatalf("Exhaustive failed: %v", err)
	}

	for _, rec := range state.History {
		if rec.Index == 1 && rec.BinaryPath != "" {
			t.Errorf("Displaced best still references %s", rec.BinaryPath)
		}
	}

	if _, err := os.Stat(state.Best.BinaryPath); err != nil {
		t.Errorf("Best binary missing: %v", err)
	}
}

func TestExhaustive_KeepAllBinaries(t *testing.T) {
	compiler := &fakeCompiler{}
	provider := &fakeProvider{metrics: map[string]*inspect.Metrics{
		"":   baselineM(),
		"-a": withStrings(80),
		"-b": withStrings(40),
	}}

	e := newTestEngine(t, compiler, provider, Options{KeepAllBinaries: true})
	state, err := e.Exhaustive(context.Background(), plainCatalog("-a", "-b"), 1, 1)
	if err != nil {
		t.Fatalf("Exhaustive failed: %v", err)
	}
	for _, rec := range state.History {
		if !rec.Compiled {
			continue
		}
		if _, err := os.Stat(rec.BinaryPath); err != nil {
			t.Errorf("Binary %d removed despite KeepAllBinaries", rec.Index)
		}
	}
}

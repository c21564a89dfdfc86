package search

import (
	"testing"

	"obforge/internal/inspect"
)

func compiledRecord(index int, s float64) Record {
	return Record{
		Index:      index,
		Compiled:   true,
		Metrics:    &inspect.Metrics{Size: 100},
		Score:      s,
		BinaryPath: "bin",
	}
}

func TestStateAppend(t *testing.T) {
	s := &State{}

	s.Append(compiledRecord(1, 5))
	s.Append(Record{Index: 2, Diagnostic: "rejected"})
	s.Append(Record{Index: 3, Compiled: true}) // no metrics

	if s.Tested != 3 {
		t.Errorf("Tested = %d, want 3", s.Tested)
	}
	if s.Failed != 2 {
		t.Errorf("Failed = %d, want 2", s.Failed)
	}
	if len(s.History) != 3 {
		t.Errorf("History length = %d, want 3", len(s.History))
	}
}

func TestUpdateBest(t *testing.T) {
	s := &State{}

	// First compiled record always installs
	improved, displaced := s.UpdateBest(compiledRecord(1, 10))
	if !improved || displaced != "" {
		t.Fatalf("First record: improved=%v displaced=%q", improved, displaced)
	}

	// Lower score never displaces
	if improved, _ := s.UpdateBest(compiledRecord(2, 5)); improved {
		t.Error("Lower score must not displace the best")
	}

	// Equal score with higher index keeps the first seen
	if improved, _ := s.UpdateBest(compiledRecord(3, 10)); improved {
		t.Error("Equal score with higher index must not displace")
	}

	// Strictly better score displaces, reporting the old binary
	rec := compiledRecord(4, 11)
	rec.BinaryPath = "bin4"
	improved, displaced = s.UpdateBest(rec)
	if !improved {
		t.Fatal("Strictly better score must displace")
	}
	if displaced != "bin" {
		t.Errorf("Displaced path = %q, want %q", displaced, "bin")
	}
	if s.Best.Index != 4 {
		t.Errorf("Best index = %d, want 4", s.Best.Index)
	}
}

func TestUpdateBest_EqualScoreLowerIndexWins(t *testing.T) {
	// Out-of-order completion: a later-generated candidate arrives first.
	s := &State{}
	s.UpdateBest(compiledRecord(7, 10))

	improved, _ := s.UpdateBest(compiledRecord(2, 10))
	if !improved {
		t.Fatal("Equal score with lower index must displace")
	}
	if s.Best.Index != 2 {
		t.Errorf("Best index = %d, want 2", s.Best.Index)
	}
}

func TestUpdateBest_IgnoresFailures(t *testing.T) {
	s := &State{}

	if improved, _ := s.UpdateBest(Record{Index: 1, Score: 99}); improved {
		t.Error("Uncompiled record must not become best")
	}
	if improved, _ := s.UpdateBest(Record{Index: 2, Compiled: true, Score: 99}); improved {
		t.Error("Record without metrics must not become best")
	}
	if s.Best != nil {
		t.Error("Best should remain unset")
	}
}

func TestClearBinary(t *testing.T) {
	s := &State{}
	rec := compiledRecord(1, 5)
	rec.BinaryPath = "out/candidate_00001"
	s.Append(rec)
	s.Append(compiledRecord(2, 8))

	if !s.ClearBinary("out/candidate_00001") {
		t.Fatal("Expected a matching history record")
	}
	if s.History[0].BinaryPath != "" {
		t.Errorf("History still references %s", s.History[0].BinaryPath)
	}

	if s.ClearBinary("out/candidate_00099") {
		t.Error("Unknown path must not match")
	}
}

func TestSuccessRate(t *testing.T) {
	s := &State{}
	if got := s.SuccessRate(); got != 0 {
		t.Errorf("Empty state rate = %v, want 0", got)
	}

	s.Append(compiledRecord(1, 0))
	s.Append(compiledRecord(2, 0))
	s.Append(Record{Index: 3})

	if got := s.SuccessRate(); got != 66.67 {
		t.Errorf("SuccessRate = %v, want 66.67", got)
	}
}

func TestSnapshot(t *testing.T) {
	s := &State{}
	s.Append(compiledRecord(1, 5))
	s.UpdateBest(compiledRecord(1, 5))

	tested, failed, best := s.Snapshot()
	if tested != 1 || failed != 0 {
		t.Errorf("Snapshot counters: tested=%d failed=%d", tested, failed)
	}
	if best == nil || best.Index != 1 {
		t.Fatalf("Snapshot best: %+v", best)
	}

	// The snapshot is a copy
	best.Score = 999
	if s.Best.Score == 999 {
		t.Error("Snapshot leaked a pointer into State")
	}
}

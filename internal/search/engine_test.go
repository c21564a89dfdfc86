package search

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"obforge/internal/compile"
	"obforge/internal/inspect"
	"obforge/internal/score"
)

// fakeCompiler accepts or rejects flag sets by their joined token string
// and writes that string as the "binary" so the fake provider can key
// metrics off the file content.
type fakeCompiler struct {
	mu      sync.Mutex
	rejects map[string]string
	calls   [][]string
}

func (f *fakeCompiler) Compile(ctx context.Context, flags []string, destination string) (*compile.Artifact, error) {
	key := strings.Join(flags, " ")

	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), flags...))
	diag, rejected := f.rejects[key]
	f.mu.Unlock()

	artifact := &compile.Artifact{Flags: flags, BinaryPath: destination}
	if rejected {
		artifact.Diagnostic = diag
		return artifact, nil
	}
	if err := os.WriteFile(destination, []byte(key), 0755); err != nil {
		return nil, err
	}
	artifact.Compiled = true
	return artifact, nil
}

func (f *fakeCompiler) Binary() string { return "clang" }

// fakeProvider maps the fake binary's content to scripted metrics.
type fakeProvider struct {
	metrics map[string]*inspect.Metrics
	fails   map[string]bool
}

func (p *fakeProvider) Inspect(ctx context.Context, path string, sensitive []string) (*inspect.Metrics, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key := string(content)
	if p.fails[key] {
		return nil, fmt.Errorf("analysis failed for %q", key)
	}
	m, ok := p.metrics[key]
	if !ok {
		return nil, fmt.Errorf("no scripted metrics for %q", key)
	}
	out := *m
	return &out, nil
}

func (p *fakeProvider) Name() string { return "fake" }

// baselineM is the scripted baseline; candidates vary StringCount only so
// expected scores are simple string-reduction terms.
func baselineM() *inspect.Metrics {
	return &inspect.Metrics{
		Size:             1000,
		StringCount:      100,
		SymbolCount:      50,
		FunctionCount:    20,
		InstructionCount: 500,
	}
}

func withStrings(n int) *inspect.Metrics {
	m := baselineM()
	m.StringCount = n
	return m
}

// recordingSink captures every trial forwarded to the sink.
type recordingSink struct {
	mu   sync.Mutex
	recs []Record
}

func (s *recordingSink) RecordTrial(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func (s *recordingSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

func newTestEngine(t *testing.T, c compile.Compiler, p inspect.Provider, opts Options) *Engine {
	t.Helper()
	if opts.OutputDir == "" {
		opts.OutputDir = t.TempDir()
	}
	opts.Weights = score.DefaultWeights()
	e, err := NewEngine(c, p, opts)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"obforge/internal/catalog"
	"obforge/internal/compile"
	"obforge/internal/inspect"
	"obforge/internal/logging"
	"obforge/internal/score"
)

// Engine wires the compiler adapter, metrics provider and scorer into a
// trial pipeline shared by both search strategies.
type Engine struct {
	compiler compile.Compiler
	provider inspect.Provider
	opts     Options
}

// Options configure a search run.
type Options struct {
	// BaseFlags are flag strings applied to every build, baseline included.
	BaseFlags []string

	// Sensitive strings should disappear from hardened binaries.
	Sensitive []string

	// OutputDir is exclusively owned by this run; candidate binaries are
	// namespaced per trial inside it.
	OutputDir string

	// Weights is the scoring table (DefaultWeights when zero-valued
	// tables are not meaningful; callers should pass an explicit table).
	Weights score.Weights

	// KeepAllBinaries retains every compiled binary instead of only the
	// current best.
	KeepAllBinaries bool

	// Threshold is the minimum strict improvement progressive tuning
	// requires before locking a candidate in.
	Threshold float64

	// Sink, when non-nil, receives every finished trial record.
	Sink Sink

	// Progress, when non-nil, is called after each trial.
	Progress func(index, total int, rec Record)
}

// NewEngine creates a search engine. The output directory is created
// eagerly; failure to do so is an environment error.
func NewEngine(c compile.Compiler, p inspect.Provider, opts Options) (*Engine, error) {
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory required")
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create output directory: %w", err)
	}
	return &Engine{compiler: c, provider: p, opts: opts}, nil
}

// buildBaseline compiles and inspects the reference build. Baseline
// failure aborts the run: no score is meaningful without it.
func (e *Engine) buildBaseline(ctx context.Context) (*State, error) {
	baselinePath := filepath.Join(e.opts.OutputDir, "baseline")
	tokens := catalog.ExpandTokens(e.opts.BaseFlags)

	artifact, err := e.compiler.Compile(ctx, tokens, baselinePath)
	if err != nil {
		return nil, err
	}
	if !artifact.Compiled {
		return nil, fmt.Errorf("baseline compilation failed: %s", artifact.Diagnostic)
	}

	metrics, err := e.provider.Inspect(ctx, baselinePath, e.opts.Sensitive)
	if err != nil {
		return nil, fmt.Errorf("baseline inspection failed: %w", err)
	}

	logging.Search("Baseline ready: size=%d strings=%d symbols=%d functions=%d instrs=%d (provider=%s)",
		metrics.Size, metrics.StringCount, metrics.SymbolCount,
		metrics.FunctionCount, metrics.InstructionCount, metrics.Provider)

	return &State{Baseline: metrics, BaselinePath: baselinePath}, nil
}

// evaluate runs the compile -> inspect -> score pipeline for one candidate.
// Trial failures come back inside the Record; only environment failures
// return an error.
func (e *Engine) evaluate(ctx context.Context, state *State, index int, flags []string) (Record, error) {
	rec := Record{Index: index, Flags: append([]string(nil), flags...)}

	combined := catalog.MergeFlags(e.opts.BaseFlags, flags)

	dest := filepath.Join(e.opts.OutputDir, fmt.Sprintf("candidate_%05d", index))
	artifact, err := e.compiler.Compile(ctx, catalog.ExpandTokens(combined), dest)
	if err != nil {
		return rec, err
	}

	rec.BinaryPath = artifact.BinaryPath
	if !artifact.Compiled {
		rec.Diagnostic = artifact.Diagnostic
		removeQuiet(artifact.BinaryPath)
		rec.BinaryPath = ""
		return rec, nil
	}
	rec.Compiled = true

	metrics, err := e.provider.Inspect(ctx, artifact.BinaryPath, e.opts.Sensitive)
	if err != nil {
		// No parseable facts is a trial failure, not a run failure.
		rec.Diagnostic = fmt.Sprintf("inspection failed: %v", err)
		rec.Metrics = nil
		removeQuiet(artifact.BinaryPath)
		rec.BinaryPath = ""
		return rec, nil
	}

	rec.Metrics = metrics
	rec.Score = score.Score(metrics, state.Baseline, e.opts.Weights)
	return rec, nil
}

// finishTrial appends the record, forwards it to the sink and progress
// callback.
func (e *Engine) finishTrial(state *State, total int, rec Record) {
	state.Append(rec)
	if e.opts.Sink != nil {
		if err := e.opts.Sink.RecordTrial(rec); err != nil {
			logging.HistoryWarn("failed to persist trial %d: %v", rec.Index, err)
		}
	}
	if e.opts.Progress != nil {
		e.opts.Progress(rec.Index, total, rec)
	}
}

// discardBinary removes a superseded candidate binary and blanks its path
// in the run history so the report never points at deleted files.
func (e *Engine) discardBinary(state *State, path string) {
	if path == "" {
		return
	}
	removeQuiet(path)
	state.ClearBinary(path)
}

func removeQuiet(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}

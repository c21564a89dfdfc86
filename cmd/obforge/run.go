package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"obforge/cmd/obforge/ui"
	"obforge/internal/catalog"
	"obforge/internal/compile"
	"obforge/internal/history"
	"obforge/internal/inspect"
	"obforge/internal/report"
	"obforge/internal/runner"
	"obforge/internal/search"
	"obforge/internal/verify"
)

// runContext holds everything one search run needs: a fresh run directory
// namespaced by a UUID, the wired compiler and metrics provider, and the
// optional history store.
type runContext struct {
	runID    string
	dir      string
	started  time.Time
	runner   runner.Runner
	compiler *compile.ClangCompiler
	provider inspect.Provider
	store    *history.Store
}

// newRunContext wires the pipeline for one source file. The caller must
// close the context when the run finishes.
func newRunContext(source, strategy string) (*runContext, error) {
	rc := &runContext{
		runID:   uuid.NewString(),
		started: time.Now(),
		runner:  runner.NewDirectRunner(),
	}
	rc.dir = filepath.Join(outputDir, "runs", rc.runID)

	var copts []compile.Option
	if cfg.Compile.Compiler != "" {
		copts = append(copts, compile.WithBinary(cfg.Compile.Compiler))
	}
	if d := cfg.CompileTimeout(); d > 0 {
		copts = append(copts, compile.WithTimeout(d))
	}
	compiler, err := compile.New(rc.runner, source, copts...)
	if err != nil {
		return nil, err
	}
	rc.compiler = compiler

	provider, err := inspect.NewProvider(rc.runner, inspect.Options{
		PreferRich:  cfg.Inspect.PreferRich,
		RequireRich: cfg.Inspect.RequireRich,
	})
	if err != nil {
		return nil, err
	}
	rc.provider = provider

	if cfg.History.Enabled {
		path := cfg.History.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(outputDir, path)
		}
		store, err := history.Open(path, history.RunInfo{
			ID:       rc.runID,
			Source:   source,
			Compiler: compiler.Binary(),
			Provider: provider.Name(),
			Strategy: strategy,
		})
		if err != nil {
			return nil, err
		}
		rc.store = store
	}

	logger.Info("Run initialized",
		zap.String("run_id", rc.runID),
		zap.String("source", source),
		zap.String("compiler", compiler.Binary()),
		zap.String("provider", provider.Name()),
		zap.String("strategy", strategy))
	return rc, nil
}

// engineOptions builds the search options shared by both strategies.
func (rc *runContext) engineOptions() search.Options {
	return search.Options{
		BaseFlags:       cfg.Compile.BaseFlags,
		Sensitive:       cfg.Inspect.SensitiveStrings,
		OutputDir:       rc.dir,
		Weights:         cfg.Weights,
		KeepAllBinaries: cfg.Search.KeepAllBinaries,
		Threshold:       cfg.Search.Threshold,
		Sink:            rc.sink(),
		Progress:        progressLine,
	}
}

// sink adapts the optional history store to the search.Sink interface.
func (rc *runContext) sink() search.Sink {
	if rc.store == nil {
		return nil
	}
	return rc.store
}

// manifest records the run identity for the report.
func (rc *runContext) manifest(source, strategy string) report.Manifest {
	return report.Manifest{
		RunID:      rc.runID,
		Source:     source,
		Compiler:   rc.compiler.Binary(),
		Provider:   rc.provider.Name(),
		Strategy:   strategy,
		BaseFlags:  cfg.Compile.BaseFlags,
		Sensitive:  cfg.Inspect.SensitiveStrings,
		StartedAt:  rc.started,
		FinishedAt: time.Now(),
	}
}

// finish exports the report, optionally verifies the best candidate and
// prints the summary.
func (rc *runContext) finish(ctx context.Context, source, strategy string, state *search.State) error {
	rep := report.Build(rc.manifest(source, strategy), state)

	if cfg.Verify.Enabled && state.Best != nil && state.Best.BinaryPath != "" {
		v := verify.New(rc.runner)
		vr, err := v.Verify(ctx, state.BaselinePath, state.Best.BinaryPath, cfg.Verify.Vectors)
		if err != nil {
			logger.Warn("Verification failed to run", zap.Error(err))
		} else {
			rep.Verification = vr
		}
	}

	reportPath := filepath.Join(rc.dir, "report.json")
	if err := rep.Save(reportPath); err != nil {
		return err
	}
	logger.Info("Report saved", zap.String("path", reportPath))

	fmt.Println(renderSummary(rep))
	return nil
}

func renderSummary(rep *report.Report) string {
	return ui.RenderSummary(rep, ui.DefaultStyles())
}

// close releases run resources.
func (rc *runContext) close() {
	if rc.store != nil {
		if err := rc.store.Close(); err != nil {
			logger.Warn("History store close failed", zap.Error(err))
		}
	}
}

// progressLine prints a one-line heartbeat per trial under --verbose.
func progressLine(index, total int, rec search.Record) {
	if !verbose {
		return
	}
	status := fmt.Sprintf("%.2f", rec.Score)
	if !rec.Compiled {
		status = "compile failed"
	} else if rec.Metrics == nil {
		status = "no metrics"
	}
	fmt.Printf("[%d/%d] %s: %s\n", index, total, strings.Join(rec.Flags, " "), status)
}

// loadCatalog resolves the flag catalog: the built-in set, or a YAML file,
// then category/priority filters from config and command flags.
func loadCatalog(path string, categories, priorities []string) (*catalog.Catalog, []catalog.Option, error) {
	cat := catalog.Default()
	options := catalog.DefaultOptions()
	if path != "" {
		loaded, loadedOptions, err := catalog.Load(path)
		if err != nil {
			return nil, nil, err
		}
		cat = loaded
		if len(loadedOptions) > 0 {
			options = loadedOptions
		}
	}

	categories = append(append([]string(nil), cfg.Search.Categories...), categories...)
	priorities = append(append([]string(nil), cfg.Search.Priorities...), priorities...)
	cat = cat.Filter(categories, priorities)
	if len(cat.Entries) == 0 {
		return nil, nil, fmt.Errorf("catalog filter matched no flags")
	}
	return cat, options, nil
}

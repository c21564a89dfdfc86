package search

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"obforge/internal/catalog"
	"obforge/internal/logging"
)

// ExhaustiveParallel is the bounded-worker variant of Exhaustive. Up to
// workers trials run concurrently; per-trial binary paths are already
// namespaced by candidate index, and State mutators are mutex-guarded.
//
// The final best score equals the sequential result: equal scores resolve
// to the lowest generation index regardless of completion order. What
// does deviate from the sequential contract is History order, which
// follows completion rather than generation, and disk usage, which is
// bounded by the worker count rather than a single retained binary.
func (e *Engine) ExhaustiveParallel(ctx context.Context, cat *catalog.Catalog, minFlags, maxFlags, workers int) (*State, error) {
	if workers <= 1 {
		return e.Exhaustive(ctx, cat, minFlags, maxFlags)
	}

	state, err := e.buildBaseline(ctx)
	if err != nil {
		return nil, err
	}

	flags := cat.Flags()
	state.Total = countCandidates(flags, minFlags, maxFlags, cat)
	logging.Search("Parallel exhaustive search: %d candidates on %d workers", state.Total, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	// cleanupMu serializes best-replacement bookkeeping so a displaced
	// binary is removed exactly once.
	var cleanupMu sync.Mutex

	gen := NewGenerator(flags, minFlags, maxFlags, cat)
	index := 0
	for {
		combo, ok := gen.Next()
		if !ok {
			break
		}
		index++

		idx := index
		candidate := combo
		g.Go(func() error {
			rec, err := e.evaluate(gctx, state, idx, candidate)
			if err != nil {
				return err
			}

			if rec.Compiled {
				cleanupMu.Lock()
				improved, displaced := state.UpdateBest(rec)
				if improved {
					logging.Search("[%d/%d] NEW BEST score=%.2f flags=%v", idx, state.Total, rec.Score, rec.Flags)
					if !e.opts.KeepAllBinaries {
						e.discardBinary(state, displaced)
					}
				} else if !e.opts.KeepAllBinaries {
					removeQuiet(rec.BinaryPath)
					rec.BinaryPath = ""
				}
				cleanupMu.Unlock()
			}

			e.finishTrial(state, state.Total, rec)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return state, err
	}

	// A record displaced between its best update and its history append
	// still carries the path of a binary removed by the displacing worker.
	if !e.opts.KeepAllBinaries {
		state.PruneBinaryRefs()
	}

	logging.Search("Parallel exhaustive search complete: tested=%d failed=%d rate=%.2f%%",
		state.Tested, state.Failed, state.SuccessRate())
	return state, nil
}

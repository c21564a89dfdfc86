package search

import (
	"context"

	"obforge/internal/catalog"
	"obforge/internal/logging"
)

// Exhaustive evaluates every conflict-free combination of the catalog's
// flags between minFlags and maxFlags tokens, tracking the best successful
// candidate. The tracked best score is monotonically non-decreasing; ties
// keep the earlier candidate in generation order.
func (e *Engine) Exhaustive(ctx context.Context, cat *catalog.Catalog, minFlags, maxFlags int) (*State, error) {
	state, err := e.buildBaseline(ctx)
	if err != nil {
		return nil, err
	}

	flags := cat.Flags()
	state.Total = countCandidates(flags, minFlags, maxFlags, cat)
	logging.Search("Exhaustive search: %d candidates (min=%d, max=%d)", state.Total, minFlags, maxFlags)

	gen := NewGenerator(flags, minFlags, maxFlags, cat)
	index := 0
	for {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		combo, ok := gen.Next()
		if !ok {
			break
		}
		index++

		rec, err := e.evaluate(ctx, state, index, combo)
		if err != nil {
			return state, err
		}

		if rec.Compiled {
			improved, displaced := state.UpdateBest(rec)
			if improved {
				logging.Search("[%d/%d] NEW BEST score=%.2f flags=%v", index, state.Total, rec.Score, rec.Flags)
				if !e.opts.KeepAllBinaries {
					e.discardBinary(state, displaced)
				}
			} else if !e.opts.KeepAllBinaries {
				removeQuiet(rec.BinaryPath)
				rec.BinaryPath = ""
			}
		}

		e.finishTrial(state, state.Total, rec)
	}

	logging.Search("Exhaustive search complete: tested=%d failed=%d rate=%.2f%%",
		state.Tested, state.Failed, state.SuccessRate())
	return state, nil
}

// countCandidates sizes the search space without compiling anything.
func countCandidates(flags []string, minFlags, maxFlags int, cat *catalog.Catalog) int {
	gen := NewGenerator(flags, minFlags, maxFlags, cat)
	count := 0
	for {
		if _, ok := gen.Next(); !ok {
			return count
		}
		count++
	}
}

package search

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"obforge/internal/catalog"
	"obforge/internal/logging"
)

// Progressive grows an accepted flag set greedily from the baseline.
// Options are tried in order; an option whose build strictly improves the
// current score beyond the configured threshold is locked in permanently.
// There is no backtracking: an early acceptance can block a better later
// combination. That order dependence is the strategy's deliberate
// cost/optimality trade-off; use Exhaustive when optimality matters more
// than compile count.
//
// The final binary of the last accepted configuration is materialized at
// <output>/final, by copy when the reference binary survived, otherwise by
// recompilation.
func (e *Engine) Progressive(ctx context.Context, options []catalog.Option) (*State, error) {
	state, err := e.buildBaseline(ctx)
	if err != nil {
		return nil, err
	}

	state.Total = len(options)
	logging.Search("Progressive tuning: %d options, threshold=%.2f", len(options), e.opts.Threshold)

	currentScore := 0.0
	referencePath := state.BaselinePath

	for i, opt := range options {
		if err := ctx.Err(); err != nil {
			return state, err
		}
		index := i + 1

		// Skip options that add nothing new.
		if catalog.ContainsAll(state.Accepted, opt.Flags) {
			logging.SearchDebug("[%d/%d] %s already covered by accepted set", index, state.Total, opt.Identifier)
			continue
		}

		trial := append(append([]string(nil), state.Accepted...), opt.Flags...)
		rec, err := e.evaluate(ctx, state, index, trial)
		if err != nil {
			return state, err
		}
		rec.Flags = append([]string(nil), opt.Flags...)

		if !rec.Compiled || rec.Metrics == nil {
			// A rejected option costs nothing; move on.
			logging.SearchDebug("[%d/%d] %s failed: %s", index, state.Total, opt.Identifier, rec.Diagnostic)
			e.finishTrial(state, state.Total, rec)
			continue
		}

		rec.Improvement = rec.Score - currentScore
		if rec.Improvement > e.opts.Threshold {
			rec.Accepted = true
			state.Accepted = catalog.MergeFlags(state.Accepted, opt.Flags)
			currentScore = rec.Score

			if referencePath != state.BaselinePath && !e.opts.KeepAllBinaries {
				e.discardBinary(state, referencePath)
			}
			referencePath = rec.BinaryPath

			logging.Search("[%d/%d] ACCEPTED %s score=%.2f (+%.2f) accepted=%v",
				index, state.Total, opt.Identifier, rec.Score, rec.Improvement, state.Accepted)
		} else {
			removeQuiet(rec.BinaryPath)
			rec.BinaryPath = ""
			logging.SearchDebug("[%d/%d] rejected %s score=%.2f (%+.2f)",
				index, state.Total, opt.Identifier, rec.Score, rec.Improvement)
		}

		if rec.Accepted {
			best := rec
			state.mu.Lock()
			state.Best = &best
			state.mu.Unlock()
		}
		e.finishTrial(state, state.Total, rec)
	}

	if err := e.materializeFinal(ctx, state, referencePath); err != nil {
		return state, err
	}

	logging.Search("Progressive tuning complete: tested=%d failed=%d accepted=%v score=%.2f",
		state.Tested, state.Failed, state.Accepted, currentScore)
	return state, nil
}

// materializeFinal writes the last accepted configuration to
// <output>/final, recompiling if the reference binary is gone.
func (e *Engine) materializeFinal(ctx context.Context, state *State, referencePath string) error {
	finalPath := filepath.Join(e.opts.OutputDir, "final")

	if _, err := os.Stat(referencePath); err == nil {
		if err := copyFile(referencePath, finalPath); err != nil {
			return fmt.Errorf("cannot materialize final binary: %w", err)
		}
		if state.Best != nil {
			state.Best.BinaryPath = finalPath
		}
		return nil
	}

	flags := catalog.MergeFlags(e.opts.BaseFlags, state.Accepted)
	artifact, err := e.compiler.Compile(ctx, catalog.ExpandTokens(flags), finalPath)
	if err != nil {
		return err
	}
	if !artifact.Compiled {
		return fmt.Errorf("final recompilation failed: %s", artifact.Diagnostic)
	}
	if state.Best != nil {
		state.Best.BinaryPath = finalPath
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

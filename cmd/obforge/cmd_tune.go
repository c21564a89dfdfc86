package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"obforge/internal/catalog"
	"obforge/internal/search"
)

var (
	tuneCatalogPath string
	tuneCategories  []string
	tunePriorities  []string
	tuneThreshold   float64
	tuneTop         int
	tuneSensitive   []string
	tuneBaseFlags   []string
	tuneKeepAll     bool
)

// tuneCmd runs the progressive greedy search.
var tuneCmd = &cobra.Command{
	Use:   "tune [source.c]",
	Short: "Progressively stack flag bundles that improve the score",
	Long: `Walks an ordered list of flag bundles, compiling each on top of the
already-accepted set. A bundle is locked in only when it improves the
score by more than --threshold. Accepted flags are never removed.

By default the built-in bundles are used in catalog order. With --top N
the N highest base-score catalog flags are tried individually instead.

Example:
  obforge tune hello.c --threshold 5 --top 15`,
	Args: cobra.ExactArgs(1),
	RunE: runTune,
}

func init() {
	tuneCmd.Flags().StringVar(&tuneCatalogPath, "catalog", "", "YAML flag catalog (default: built-in)")
	tuneCmd.Flags().StringSliceVar(&tuneCategories, "category", nil, "Restrict catalog to these categories")
	tuneCmd.Flags().StringSliceVar(&tunePriorities, "priority", nil, "Restrict catalog to these priorities")
	tuneCmd.Flags().Float64Var(&tuneThreshold, "threshold", 0, "Minimum score improvement to lock a bundle in")
	tuneCmd.Flags().IntVar(&tuneTop, "top", 0, "Try the N highest base-score flags individually")
	tuneCmd.Flags().StringSliceVar(&tuneSensitive, "sensitive", nil, "Sensitive strings that should vanish")
	tuneCmd.Flags().StringSliceVar(&tuneBaseFlags, "base-flag", nil, "Flags applied to every build, baseline included")
	tuneCmd.Flags().BoolVar(&tuneKeepAll, "keep-binaries", false, "Keep every candidate binary")
}

func runTune(cmd *cobra.Command, args []string) error {
	source := args[0]
	if tuneThreshold > 0 {
		cfg.Search.Threshold = tuneThreshold
	}
	if tuneKeepAll {
		cfg.Search.KeepAllBinaries = true
	}
	if len(tuneSensitive) > 0 {
		cfg.Inspect.SensitiveStrings = append(cfg.Inspect.SensitiveStrings, tuneSensitive...)
	}
	if len(tuneBaseFlags) > 0 {
		cfg.Compile.BaseFlags = append(cfg.Compile.BaseFlags, tuneBaseFlags...)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rc, err := newRunContext(source, "progressive")
	if err != nil {
		return err
	}
	defer rc.close()

	cat, options, err := loadCatalog(tuneCatalogPath, tuneCategories, tunePriorities)
	if err != nil {
		return err
	}
	if tuneTop > 0 {
		options = topFlagOptions(cat, tuneTop)
	}

	engine, err := search.NewEngine(rc.compiler, rc.provider, rc.engineOptions())
	if err != nil {
		return err
	}

	state, err := engine.Progressive(ctx, options)
	if err != nil {
		return err
	}

	logger.Info("Tuning finished",
		zap.Int("tested", state.Tested),
		zap.Strings("accepted", state.Accepted))
	return rc.finish(ctx, source, "progressive", state)
}

// topFlagOptions turns the N highest base-score catalog entries into
// single-flag bundles, best first.
func topFlagOptions(cat *catalog.Catalog, n int) []catalog.Option {
	entries := cat.SortedByScore()
	if len(entries) > n {
		entries = entries[:n]
	}
	options := make([]catalog.Option, len(entries))
	for i, e := range entries {
		options[i] = catalog.Option{
			Identifier:  e.Flag,
			Flags:       []string{e.Flag},
			Description: e.Description,
		}
	}
	return options
}

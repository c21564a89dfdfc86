package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"obforge/internal/search"
)

var (
	searchCatalogPath string
	searchCategories  []string
	searchPriorities  []string
	searchMinFlags    int
	searchMaxFlags    int
	searchWorkers     int
	searchKeepAll     bool
	searchSensitive   []string
	searchBaseFlags   []string
)

// searchCmd runs the exhaustive combination search.
var searchCmd = &cobra.Command{
	Use:   "search [source.c]",
	Short: "Exhaustively search flag combinations for one source file",
	Long: `Compiles every conflict-free combination of catalog flags between
--min and --max tokens, scores each binary against the baseline build and
keeps the best one.

The candidate space grows combinatorially; keep --max small or narrow the
catalog with --category / --priority.

Example:
  obforge search hello.c --max 2 --category symbols --sensitive "secret_key"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchCatalogPath, "catalog", "", "YAML flag catalog (default: built-in)")
	searchCmd.Flags().StringSliceVar(&searchCategories, "category", nil, "Restrict catalog to these categories")
	searchCmd.Flags().StringSliceVar(&searchPriorities, "priority", nil, "Restrict catalog to these priorities")
	searchCmd.Flags().IntVar(&searchMinFlags, "min", 0, "Minimum combination size (default: config)")
	searchCmd.Flags().IntVar(&searchMaxFlags, "max", 0, "Maximum combination size (default: config)")
	searchCmd.Flags().IntVar(&searchWorkers, "workers", 0, "Parallel compile workers (default: config)")
	searchCmd.Flags().BoolVar(&searchKeepAll, "keep-binaries", false, "Keep every candidate binary")
	searchCmd.Flags().StringSliceVar(&searchSensitive, "sensitive", nil, "Sensitive strings that should vanish")
	searchCmd.Flags().StringSliceVar(&searchBaseFlags, "base-flag", nil, "Flags applied to every build, baseline included")
}

func runSearch(cmd *cobra.Command, args []string) error {
	source := args[0]
	applySearchOverrides()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rc, err := newRunContext(source, "exhaustive")
	if err != nil {
		return err
	}
	defer rc.close()

	cat, _, err := loadCatalog(searchCatalogPath, searchCategories, searchPriorities)
	if err != nil {
		return err
	}

	engine, err := search.NewEngine(rc.compiler, rc.provider, rc.engineOptions())
	if err != nil {
		return err
	}

	var state *search.State
	if cfg.Search.Workers > 1 {
		state, err = engine.ExhaustiveParallel(ctx, cat, cfg.Search.MinFlags, cfg.Search.MaxFlags, cfg.Search.Workers)
	} else {
		state, err = engine.Exhaustive(ctx, cat, cfg.Search.MinFlags, cfg.Search.MaxFlags)
	}
	if err != nil {
		return err
	}

	logger.Info("Search finished",
		zap.Int("tested", state.Tested),
		zap.Int("failed", state.Failed),
		zap.Float64("success_rate", state.SuccessRate()))
	return rc.finish(ctx, source, "exhaustive", state)
}

// applySearchOverrides layers explicit command flags over the config.
func applySearchOverrides() {
	if searchMinFlags > 0 {
		cfg.Search.MinFlags = searchMinFlags
	}
	if searchMaxFlags > 0 {
		cfg.Search.MaxFlags = searchMaxFlags
	}
	if searchWorkers > 0 {
		cfg.Search.Workers = searchWorkers
	}
	if searchKeepAll {
		cfg.Search.KeepAllBinaries = true
	}
	if len(searchSensitive) > 0 {
		cfg.Inspect.SensitiveStrings = append(cfg.Inspect.SensitiveStrings, searchSensitive...)
	}
	if len(searchBaseFlags) > 0 {
		cfg.Compile.BaseFlags = append(cfg.Compile.BaseFlags, searchBaseFlags...)
	}
}

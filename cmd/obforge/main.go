package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"obforge/internal/config"
	"obforge/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	outputDir  string

	// Loaded configuration, available to every subcommand
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "obforge",
	Short: "obforge - compiler-flag obfuscation optimizer",
	Long: `obforge searches native-compiler flag configurations that maximize a
heuristic obfuscation score for a C/C++ source file.

Candidate flag sets are compiled, the resulting binaries are measured with
radare2 (or an objdump/nm/strings fallback), and each build is scored
against the baseline on size, strings, symbols, functions, instructions
and the disappearance of sensitive strings. Two search strategies are
available: exhaustive combination search and progressive greedy tuning.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}

		if cfg.Logging.Enabled {
			if err := logging.Initialize(outputDir, cfg.Logging.Level); err != nil {
				return fmt.Errorf("failed to initialize file logging: %w", err)
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "obforge.yaml", "Configuration file")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "obforge_out", "Output directory for binaries, logs and reports")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(tuneCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

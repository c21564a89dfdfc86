package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"obforge/cmd/obforge/ui"
	"obforge/internal/inspect"
	"obforge/internal/runner"
)

var inspectSensitive []string

// inspectCmd measures one existing binary.
var inspectCmd = &cobra.Command{
	Use:   "inspect [binary]",
	Short: "Measure a binary's obfuscation-relevant metrics",
	Long: `Reports size, extracted strings, symbols, functions and instruction
counts for an existing binary, using radare2 when available and the
objdump/nm/strings fallback otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringSliceVar(&inspectSensitive, "sensitive", nil, "Sensitive strings to look for")
}

func runInspect(cmd *cobra.Command, args []string) error {
	r := runner.NewDirectRunner()
	provider, err := inspect.NewProvider(r, inspect.Options{
		PreferRich:  cfg.Inspect.PreferRich,
		RequireRich: cfg.Inspect.RequireRich,
	})
	if err != nil {
		return err
	}

	sensitive := append(append([]string(nil), cfg.Inspect.SensitiveStrings...), inspectSensitive...)
	m, err := provider.Inspect(cmd.Context(), args[0], sensitive)
	if err != nil {
		return err
	}

	fmt.Println(ui.RenderMetrics(args[0], m, ui.DefaultStyles()))
	return nil
}

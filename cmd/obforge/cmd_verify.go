package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"obforge/cmd/obforge/ui"
	"obforge/internal/runner"
	"obforge/internal/verify"
)

var verifyArgVectors []string

// verifyCmd checks functional equivalence of two binaries.
var verifyCmd = &cobra.Command{
	Use:   "verify [baseline] [candidate]",
	Short: "Check two binaries for identical observable behavior",
	Long: `Runs both binaries over each argument vector and compares exit code,
stdout and stderr exactly. Each --args value is one vector, split on
whitespace; with no --args a single bare invocation is compared.

Example:
  obforge verify out/baseline out/final --args "encode input.txt" --args "--help"`,
	Args: cobra.ExactArgs(2),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringArrayVar(&verifyArgVectors, "args", nil, "Argument vector (repeatable)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	vectors := make([][]string, 0, len(verifyArgVectors))
	for _, raw := range verifyArgVectors {
		vectors = append(vectors, strings.Fields(raw))
	}
	if len(vectors) == 0 {
		vectors = [][]string{{}}
	}

	v := verify.New(runner.NewDirectRunner())
	rep, err := v.Verify(cmd.Context(), args[0], args[1], vectors)
	if err != nil {
		return err
	}

	fmt.Println(ui.RenderVerification(rep, ui.DefaultStyles()))
	if !rep.Confirmed {
		return fmt.Errorf("binaries are not observably equivalent")
	}
	return nil
}

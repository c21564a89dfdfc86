package inspect

import (
	"context"
	"fmt"
	"os"
	"strings"

	"obforge/internal/logging"
	"obforge/internal/runner"
)

// instrsPerBlock is the assumed mean instruction count of a basic block,
// used only for the fallback's coarse block/complexity estimates.
const instrsPerBlock = 5.0

// fallbackBackend derives metrics heuristically from generic binutils
// output: instruction count from objdump disassembly lines, function count
// from global text symbols, string count from printable-string matches.
// Basic-block and complexity averages are estimated from the
// instruction/function ratio and flagged low fidelity.
type fallbackBackend struct {
	runner runner.Runner
}

// newFallbackBackend verifies the binutils toolchain is present.
func newFallbackBackend(r runner.Runner) (*fallbackBackend, error) {
	for _, tool := range []string{"objdump", "nm", "strings"} {
		if _, ok := r.LookPath(tool); !ok {
			return nil, fmt.Errorf("required tool %q not found on PATH", tool)
		}
	}
	return &fallbackBackend{runner: r}, nil
}

func (b *fallbackBackend) Name() string {
	return ProviderFallback
}

func (b *fallbackBackend) Inspect(ctx context.Context, path string, sensitive []string) (*Metrics, error) {
	timer := logging.StartTimer(logging.CategoryInspect, "objdump inspection")
	defer timer.Stop()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("binary not found: %s", path)
	}

	extracted := b.extractStrings(ctx, path)
	functionCount := b.countFunctions(ctx, path)
	instructionCount := b.countInstructions(ctx, path)
	symbolCount := b.countSymbols(ctx, path)

	// Coarse estimates from the instruction/function ratio. Good enough
	// for relative comparisons within a run, not for absolute reporting.
	var avgBlocks, avgComplexity float64
	if functionCount > 0 {
		perFunction := float64(instructionCount) / float64(functionCount)
		avgBlocks = perFunction / instrsPerBlock
		avgComplexity = avgBlocks/2 + 1
	}

	logging.InspectDebug("objdump: %d functions, %d instrs, %d strings in %s",
		functionCount, instructionCount, len(extracted), path)

	return &Metrics{
		Size:             info.Size(),
		StringCount:      len(extracted),
		SymbolCount:      symbolCount,
		FunctionCount:    functionCount,
		InstructionCount: instructionCount,
		AvgBasicBlocks:   avgBlocks,
		AvgComplexity:    avgComplexity,
		Provider:         ProviderFallback,
		LowFidelity:      true,
		FoundStrings:     matchSensitive(extracted, sensitive),
	}, nil
}

// extractStrings returns the printable strings found in the binary.
func (b *fallbackBackend) extractStrings(ctx context.Context, path string) []string {
	stdout, ok := b.run(ctx, "strings", path)
	if !ok {
		return nil
	}
	return splitLines(stdout)
}

// countSymbols counts all nm symbol-table lines.
func (b *fallbackBackend) countSymbols(ctx context.Context, path string) int {
	stdout, ok := b.run(ctx, "nm", path)
	if !ok {
		return 0
	}
	return len(splitLines(stdout))
}

// countFunctions counts global text symbols (" T ") in nm output.
func (b *fallbackBackend) countFunctions(ctx context.Context, path string) int {
	stdout, ok := b.run(ctx, "nm", path)
	if !ok {
		return 0
	}
	count := 0
	for _, line := range splitLines(stdout) {
		if strings.Contains(line, " T ") {
			count++
		}
	}
	return count
}

// countInstructions counts disassembly lines that begin with an address.
func (b *fallbackBackend) countInstructions(ctx context.Context, path string) int {
	stdout, ok := b.run(ctx, "objdump", "-d", path)
	if !ok {
		return 0
	}
	count := 0
	for _, line := range splitLines(stdout) {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "0") {
			count++
		}
	}
	return count
}

// run executes one tool, treating any failure as an empty result so a
// single broken dump degrades metrics to zero instead of aborting a trial.
func (b *fallbackBackend) run(ctx context.Context, binary string, args ...string) (string, bool) {
	res, err := b.runner.Run(ctx, runner.Command{Binary: binary, Arguments: args})
	if err != nil || res.Killed || res.ExitCode != 0 {
		logging.InspectWarn("%s %s failed", binary, strings.Join(args, " "))
		return "", false
	}
	return res.Stdout, true
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

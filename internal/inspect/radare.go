package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"obforge/internal/logging"
	"obforge/internal/runner"
)

// richBackend queries structured function and string data from radare2.
// When analysis output cannot be parsed it falls back transparently,
// unless the caller required the rich backend.
type richBackend struct {
	runner   runner.Runner
	binary   string
	fallback *fallbackBackend
	require  bool
}

// r2Function mirrors the fields of one `aflj` entry we consume.
type r2Function struct {
	Name    string `json:"name"`
	NInstrs int    `json:"ninstrs"`
	NBBs    int    `json:"nbbs"`
	CC      int    `json:"cc"`
}

// r2String mirrors one `izj` entry.
type r2String struct {
	String string `json:"string"`
	Name   string `json:"name"`
}

func (b *richBackend) Name() string {
	return ProviderRadare2
}

func (b *richBackend) Inspect(ctx context.Context, path string, sensitive []string) (*Metrics, error) {
	timer := logging.StartTimer(logging.CategoryInspect, "radare2 inspection")
	defer timer.Stop()

	metrics, err := b.analyze(ctx, path, sensitive)
	if err == nil {
		return metrics, nil
	}

	if b.require {
		return nil, fmt.Errorf("radare2 analysis failed: %w", err)
	}
	if b.fallback == nil {
		return nil, err
	}

	logging.InspectWarn("radare2 analysis failed (%v), falling back to objdump", err)
	return b.fallback.Inspect(ctx, path, sensitive)
}

func (b *richBackend) analyze(ctx context.Context, path string, sensitive []string) (*Metrics, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("binary not found: %s", path)
	}

	var functions []r2Function
	if err := b.commandJSON(ctx, path, "aflj", &functions); err != nil {
		return nil, err
	}

	var rawStrings []r2String
	if err := b.commandJSON(ctx, path, "izj", &rawStrings); err != nil {
		return nil, err
	}

	var totalInstrs, totalBlocks, totalComplexity int
	for _, f := range functions {
		totalInstrs += f.NInstrs
		totalBlocks += f.NBBs
		totalComplexity += f.CC
	}

	var avgBlocks, avgComplexity float64
	if n := len(functions); n > 0 {
		avgBlocks = float64(totalBlocks) / float64(n)
		avgComplexity = float64(totalComplexity) / float64(n)
	}

	extracted := make([]string, 0, len(rawStrings))
	for _, s := range rawStrings {
		switch {
		case s.String != "":
			extracted = append(extracted, s.String)
		case s.Name != "":
			extracted = append(extracted, s.Name)
		}
	}

	// Symbol counting stays on nm for both backends so symbol-based score
	// terms are comparable across providers of the same run.
	symbolCount := 0
	if b.fallback != nil {
		symbolCount = b.fallback.countSymbols(ctx, path)
	}

	logging.InspectDebug("radare2: %d functions, %d instrs, %d strings in %s",
		len(functions), totalInstrs, len(extracted), path)

	return &Metrics{
		Size:             info.Size(),
		StringCount:      len(extracted),
		SymbolCount:      symbolCount,
		FunctionCount:    len(functions),
		InstructionCount: totalInstrs,
		AvgBasicBlocks:   avgBlocks,
		AvgComplexity:    avgComplexity,
		Provider:         ProviderRadare2,
		FoundStrings:     matchSensitive(extracted, sensitive),
	}, nil
}

// commandJSON runs one radare2 command with auto-analysis and decodes its
// JSON output.
func (b *richBackend) commandJSON(ctx context.Context, path, command string, out interface{}) error {
	res, err := b.runner.Run(ctx, runner.Command{
		Binary:    b.binary,
		Arguments: []string{"-A", "-qq", "-c", command, path},
	})
	if err != nil {
		return err
	}
	if res.Killed {
		return fmt.Errorf("radare2 %s timed out", command)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("radare2 %s exited with code %d", command, res.ExitCode)
	}

	payload := strings.TrimSpace(res.Stdout)
	if payload == "" {
		return fmt.Errorf("radare2 %s produced no output", command)
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("radare2 %s output unparseable: %w", command, err)
	}
	return nil
}

// Package inspect extracts static obfuscation metrics from compiled
// binaries. Two interchangeable backends feed one canonical Metrics record:
// a rich radare2 backend with real function-level facts, and a lower
// fidelity fallback built from objdump/nm/strings output. The backend is
// chosen once, by an availability check at construction, so call sites
// never branch on tooling.
package inspect

import (
	"strings"
)

// Provider names reported in Metrics.Provider.
const (
	ProviderRadare2  = "radare2"
	ProviderFallback = "objdump"
)

// Metrics is the canonical static-analysis record for one binary.
// Instances are immutable once produced and pair 1:1 with a compiled
// artifact.
type Metrics struct {
	// Size is the binary file size in bytes.
	Size int64 `json:"size"`

	// StringCount is the number of extracted string-table entries.
	StringCount int `json:"string_count"`

	// SymbolCount is the number of symbol-table entries.
	SymbolCount int `json:"symbol_count"`

	// FunctionCount is the number of recognized functions.
	FunctionCount int `json:"function_count"`

	// InstructionCount is the total disassembled instruction count.
	InstructionCount int `json:"instruction_count"`

	// AvgBasicBlocks is the mean basic blocks per function.
	// Exact under radare2; a coarse instruction-ratio estimate otherwise.
	AvgBasicBlocks float64 `json:"avg_basic_blocks"`

	// AvgComplexity is the mean cyclomatic complexity per function.
	// Exact under radare2; a coarse instruction-ratio estimate otherwise.
	AvgComplexity float64 `json:"avg_cyclomatic_complexity"`

	// Provider names the backend that produced this record. Metrics from
	// different providers are not score-comparable.
	Provider string `json:"provider"`

	// LowFidelity marks block/complexity averages as estimated.
	LowFidelity bool `json:"low_fidelity,omitempty"`

	// FoundStrings lists which sensitive strings were still present.
	FoundStrings []string `json:"found_strings,omitempty"`
}

// SensitiveFound returns how many sensitive strings survived in the binary.
func (m *Metrics) SensitiveFound() int {
	return len(m.FoundStrings)
}

// matchSensitive performs case-insensitive exact matching of needles
// against extracted string-table entries, preserving needle order.
func matchSensitive(extracted []string, needles []string) []string {
	if len(needles) == 0 || len(extracted) == 0 {
		return nil
	}

	lower := make(map[string]bool, len(extracted))
	for _, s := range extracted {
		lower[strings.ToLower(s)] = true
	}

	var found []string
	for _, needle := range needles {
		if lower[strings.ToLower(needle)] {
			found = append(found, needle)
		}
	}
	return found
}

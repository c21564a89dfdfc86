// Package score maps a candidate's metrics against the run baseline to a
// single heuristic obfuscation score. Scoring is pure and total: every
// term contributes zero when its baseline value is zero, so the function
// never divides by zero and never produces a non-finite result.
package score

import (
	"math"

	"obforge/internal/inspect"
)

// Weights is the scoring table. Positive terms reward a change, the size
// term penalizes growth. Keeping the table in one place lets tests pin the
// heuristic and lets callers experiment without touching the formula.
type Weights struct {
	// SizeGrowth penalizes relative size increase.
	SizeGrowth float64 `yaml:"size_growth" json:"size_growth"`

	// StringReduction rewards relative string-count decrease.
	StringReduction float64 `yaml:"string_reduction" json:"string_reduction"`

	// SymbolReduction rewards relative symbol-count decrease.
	SymbolReduction float64 `yaml:"symbol_reduction" json:"symbol_reduction"`

	// FunctionReduction rewards relative function-count decrease.
	FunctionReduction float64 `yaml:"function_reduction" json:"function_reduction"`

	// InstructionGrowth rewards relative instruction-count increase.
	InstructionGrowth float64 `yaml:"instruction_growth" json:"instruction_growth"`

	// SensitiveBonus is a fixed bonus per sensitive string that vanished.
	SensitiveBonus float64 `yaml:"sensitive_bonus" json:"sensitive_bonus"`
}

// DefaultWeights returns the research-calibrated scoring table.
// Note the deliberate asymmetry: more instructions score better while size
// growth is only weakly penalized, so code bloat can outscore structural
// transforms. The heuristic is kept as calibrated upstream.
func DefaultWeights() Weights {
	return Weights{
		SizeGrowth:        10,
		StringReduction:   30,
		SymbolReduction:   25,
		FunctionReduction: 20,
		InstructionGrowth: 15,
		SensitiveBonus:    10,
	}
}

// Score computes the weighted obfuscation score of metrics relative to
// baseline. A baseline scored against itself yields 0. The result is
// rounded to two decimals for stable reporting.
func Score(m, baseline *inspect.Metrics, w Weights) float64 {
	s := 0.0

	if baseline.Size > 0 {
		ratio := float64(m.Size) / float64(baseline.Size)
		s -= (ratio - 1.0) * w.SizeGrowth
	}
	if baseline.StringCount > 0 {
		ratio := float64(m.StringCount) / float64(baseline.StringCount)
		s += (1.0 - ratio) * w.StringReduction
	}
	if baseline.SymbolCount > 0 {
		ratio := float64(m.SymbolCount) / float64(baseline.SymbolCount)
		s += (1.0 - ratio) * w.SymbolReduction
	}
	if baseline.FunctionCount > 0 {
		ratio := float64(m.FunctionCount) / float64(baseline.FunctionCount)
		s += (1.0 - ratio) * w.FunctionReduction
	}
	if baseline.InstructionCount > 0 {
		ratio := float64(m.InstructionCount) / float64(baseline.InstructionCount)
		s += (ratio - 1.0) * w.InstructionGrowth
	}

	vanished := baseline.SensitiveFound() - m.SensitiveFound()
	s += float64(vanished) * w.SensitiveBonus

	return math.Round(s*100) / 100
}

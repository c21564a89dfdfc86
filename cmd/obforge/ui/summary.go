package ui

import (
	"fmt"
	"strings"

	"obforge/internal/inspect"
	"obforge/internal/report"
	"obforge/internal/verify"
)

// RenderSummary renders the end-of-run summary block.
func RenderSummary(r *report.Report, styles Styles) string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render("Run "+r.Manifest.RunID) + "\n")
	sb.WriteString(styles.Muted.Render(fmt.Sprintf("%s via %s, metrics from %s",
		r.Manifest.Source, r.Manifest.Compiler, r.Manifest.Provider)) + "\n\n")

	sb.WriteString(fmt.Sprintf("%s %d/%d candidates compiled (%.2f%% success, %d failed)\n",
		styles.Bold.Render("Tested:"),
		r.Summary.Tested-r.Summary.Failed, r.Summary.Tested,
		r.Summary.SuccessRate, r.Summary.Failed))

	if len(r.Summary.BestFlags) > 0 {
		sb.WriteString(fmt.Sprintf("%s %s (score %.2f)\n",
			styles.Bold.Render("Best:"),
			styles.Good.Render(strings.Join(r.Summary.BestFlags, " ")),
			r.Summary.BestScore))
		if r.Summary.BestBinary != "" {
			sb.WriteString(styles.Muted.Render("       "+r.Summary.BestBinary) + "\n")
		}
	} else {
		sb.WriteString(styles.Bad.Render("No candidate produced a usable binary") + "\n")
	}

	if len(r.Leaderboard) > 0 {
		sb.WriteString("\n" + RenderLeaderboard(r.Leaderboard, styles))
	}
	if r.Verification != nil {
		sb.WriteString("\n" + RenderVerification(r.Verification, styles))
	}

	return sb.String()
}

// RenderLeaderboard renders the top-candidate grid.
func RenderLeaderboard(entries []report.Entry, styles Styles) string {
	grid := NewGrid("Top candidates",
		Column{Name: "#", Numeric: true},
		Column{Name: "Score", Numeric: true},
		Column{Name: "Flags"})
	for _, e := range entries {
		grid.Append(fmt.Sprintf("%d", e.Rank),
			fmt.Sprintf("%.2f", e.Score),
			strings.Join(e.Flags, " "))
	}
	return grid.Render(styles)
}

// RenderMetrics renders one metrics record.
func RenderMetrics(title string, m *inspect.Metrics, styles Styles) string {
	grid := NewGrid(title,
		Column{Name: "Metric"},
		Column{Name: "Value", Numeric: true})
	grid.Append("Provider", m.Provider)
	grid.Append("Size", fmt.Sprintf("%d", m.Size))
	grid.Append("Strings", fmt.Sprintf("%d", m.StringCount))
	grid.Append("Symbols", fmt.Sprintf("%d", m.SymbolCount))
	grid.Append("Functions", fmt.Sprintf("%d", m.FunctionCount))
	grid.Append("Instructions", fmt.Sprintf("%d", m.InstructionCount))
	grid.Append("Avg basic blocks", fmt.Sprintf("%.2f", m.AvgBasicBlocks))
	grid.Append("Avg complexity", fmt.Sprintf("%.2f", m.AvgComplexity))
	if len(m.FoundStrings) > 0 {
		grid.Append("Sensitive found", strings.Join(m.FoundStrings, ", "))
	}

	out := grid.Render(styles)
	if m.LowFidelity {
		out += styles.Warn.Render("Instruction-level figures are coarse estimates") + "\n"
	}
	return out
}

// RenderVerification renders the equivalence check outcome.
func RenderVerification(rep *verify.Report, styles Styles) string {
	var sb strings.Builder
	if rep.Confirmed {
		sb.WriteString(styles.Good.Render("Equivalence confirmed") +
			fmt.Sprintf(" across %d vector(s)\n", len(rep.Vectors)))
		return sb.String()
	}

	sb.WriteString(styles.Bad.Render("Equivalence NOT confirmed") + "\n")
	for _, v := range rep.Vectors {
		if v.Matched {
			continue
		}
		label := fmt.Sprintf("args %v", v.Args)
		if v.Error != "" {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", label, styles.Warn.Render(v.Error)))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s: exit %d vs %d\n",
			label, v.Baseline.ExitCode, v.Candidate.ExitCode))
	}
	return sb.String()
}

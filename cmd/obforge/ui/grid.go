package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column describes one grid column. Numeric columns are right-aligned so
// scores and counts line up by digit.
type Column struct {
	Name    string
	Numeric bool
}

// Grid renders report data as aligned columns.
type Grid struct {
	Title   string
	Columns []Column
	rows    [][]string
}

// NewGrid creates a grid with the given title and columns.
func NewGrid(title string, columns ...Column) *Grid {
	return &Grid{Title: title, Columns: columns}
}

// Append adds one row. Missing cells render empty, extra cells are dropped.
func (g *Grid) Append(cells ...string) {
	row := make([]string, len(g.Columns))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	g.rows = append(g.rows, row)
}

// Render produces the styled grid, or "" when no rows were appended.
func (g *Grid) Render(styles Styles) string {
	if len(g.rows) == 0 {
		return ""
	}

	widths := g.widths()

	var sb strings.Builder
	if g.Title != "" {
		sb.WriteString(styles.Title.Render(g.Title) + "\n")
	}

	header := make([]string, len(g.Columns))
	ruleWidth := 2 * (len(g.Columns) - 1)
	for i, col := range g.Columns {
		header[i] = align(col.Name, widths[i], col.Numeric)
		ruleWidth += widths[i]
	}
	sb.WriteString(styles.Bold.Render(strings.Join(header, "  ")) + "\n")
	sb.WriteString(styles.Muted.Render(strings.Repeat("-", ruleWidth)) + "\n")

	for _, row := range g.rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = align(cell, widths[i], g.Columns[i].Numeric)
		}
		line := strings.TrimRight(strings.Join(cells, "  "), " ")
		sb.WriteString(styles.Body.Render(line) + "\n")
	}
	return sb.String()
}

func (g *Grid) widths() []int {
	widths := make([]int, len(g.Columns))
	for i, col := range g.Columns {
		widths[i] = lipgloss.Width(col.Name)
	}
	for _, row := range g.rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// align pads a cell to its column width: numeric right, text left.
func align(cell string, width int, numeric bool) string {
	gap := width - lipgloss.Width(cell)
	if gap <= 0 {
		return cell
	}
	fill := strings.Repeat(" ", gap)
	if numeric {
		return fill + cell
	}
	return cell + fill
}

package ui

import (
	"strings"
	"testing"
)

func TestGridRender(t *testing.T) {
	grid := NewGrid("Top candidates",
		Column{Name: "#", Numeric: true},
		Column{Name: "Score", Numeric: true},
		Column{Name: "Flags"})
	grid.Append("1", "24.00", "-O3 -flto")
	grid.Append("2", "18.00", "-Os")

	out := grid.Render(DefaultStyles())

	for _, want := range []string{"Top candidates", "Score", "-O3 -flto", "-Os"} {
		if !strings.Contains(out, want) {
			t.Errorf("Rendered grid missing %q:\n%s", want, out)
		}
	}
}

func TestGridRender_NumericRightAlignment(t *testing.T) {
	grid := NewGrid("",
		Column{Name: "#", Numeric: true},
		Column{Name: "Score", Numeric: true})
	grid.Append("1", "6.00")
	grid.Append("10", "24.00")

	out := grid.Render(DefaultStyles())

	if !strings.Contains(out, " 1  ") {
		t.Errorf("Rank column not right-aligned:\n%s", out)
	}
	if !strings.Contains(out, " 6.00") {
		t.Errorf("Score column not right-aligned:\n%s", out)
	}
}

func TestGridRender_EmptyRows(t *testing.T) {
	grid := NewGrid("Empty", Column{Name: "A"}, Column{Name: "B"})
	if out := grid.Render(DefaultStyles()); out != "" {
		t.Errorf("Empty grid should render nothing, got %q", out)
	}
}

func TestGridRender_RaggedRows(t *testing.T) {
	grid := NewGrid("", Column{Name: "Flag"}, Column{Name: "Description"})
	grid.Append("-fvisibility=hidden")
	grid.Append("-O3", "Aggressive optimization", "dropped")

	out := grid.Render(DefaultStyles())

	if !strings.Contains(out, "-fvisibility=hidden") {
		t.Errorf("Wide cell truncated:\n%s", out)
	}
	if strings.Contains(out, "dropped") {
		t.Errorf("Extra cell should be dropped:\n%s", out)
	}
}

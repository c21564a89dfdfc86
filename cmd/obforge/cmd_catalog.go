package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"obforge/cmd/obforge/ui"
)

var (
	catalogPath       string
	catalogCategories []string
	catalogPriorities []string
	catalogByScore    bool
)

// catalogCmd lists the flag catalog.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the flag catalog",
	Long: `Prints the flags a search draws candidates from, after any category
or priority filtering. Use --by-score to order by heuristic base score.`,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML flag catalog (default: built-in)")
	catalogCmd.Flags().StringSliceVar(&catalogCategories, "category", nil, "Restrict to these categories")
	catalogCmd.Flags().StringSliceVar(&catalogPriorities, "priority", nil, "Restrict to these priorities")
	catalogCmd.Flags().BoolVar(&catalogByScore, "by-score", false, "Order by heuristic base score")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cat, _, err := loadCatalog(catalogPath, catalogCategories, catalogPriorities)
	if err != nil {
		return err
	}

	entries := cat.Entries
	if catalogByScore {
		entries = cat.SortedByScore()
	}

	grid := ui.NewGrid(fmt.Sprintf("Flag catalog (%d flags)", len(entries)),
		ui.Column{Name: "Flag"},
		ui.Column{Name: "Category"},
		ui.Column{Name: "Priority"},
		ui.Column{Name: "Score", Numeric: true},
		ui.Column{Name: "Description"})
	for _, e := range entries {
		grid.Append(e.Flag, e.Category, e.Priority, fmt.Sprintf("%d", e.Score), e.Description)
	}
	fmt.Println(grid.Render(ui.DefaultStyles()))
	return nil
}

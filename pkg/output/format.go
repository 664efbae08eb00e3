// Package output provides utilities for rendering cost breakdowns.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/tuition-calculator/internal/breakdown"
	"github.com/iwvelando/tuition-calculator/internal/estimate"
)

// Describe summarizes a selection in one line.
func Describe(sel estimate.Selection) string {
	parts := []string{
		string(sel.Level),
		string(sel.Residency),
		fmt.Sprintf("%d hours", sel.Hours),
		string(sel.Housing),
		string(sel.Term),
	}
	if sel.IsDorm() {
		parts = append(parts, sel.SelectedHall, sel.SelectedMeal)
	}
	return strings.Join(parts, ", ")
}

// PrettyFormat writes a human-readable rather than machine-readable breakdown.
func PrettyFormat(w io.Writer, sel estimate.Selection, b breakdown.DisplayBreakdown) {
	fmt.Fprintf(w, "--- Estimate for %s ---\n", Describe(sel))
	fmt.Fprintf(w, "Estimated Cost: %s\n", b.Headline)
	if !b.Available {
		return
	}

	width := 0
	for _, g := range b.Groups {
		for _, l := range g.Lines {
			if len(l.Label) > width {
				width = len(l.Label)
			}
		}
		if len(g.TotalLabel) > width {
			width = len(g.TotalLabel)
		}
	}

	for _, g := range b.Groups {
		fmt.Fprintf(w, "\n%s\n", g.Title)
		fmt.Fprintf(w, "%s\n", strings.Repeat("_", len(g.Title)))
		for _, l := range g.Lines {
			marker := " "
			if l.Subtotal {
				marker = "*"
			}
			fmt.Fprintf(w, "%s %-*s | %s\n", marker, width, l.Label, l.Amount)
		}
		fmt.Fprintf(w, "  %-*s | %s\n", width, g.TotalLabel, g.Total)
	}
}

// CsvFormat writes the breakdown in comma-separated value format.
func CsvFormat(w io.Writer, b breakdown.DisplayBreakdown) error {
	cw := csv.NewWriter(w)
	rows := [][]string{{"group", "label", "amount", "subtotal"}}
	rows = append(rows, []string{"", "Estimated Cost", b.Headline, "true"})
	for _, g := range b.Groups {
		for _, l := range g.Lines {
			rows = append(rows, []string{g.Title, l.Label, l.Amount, strconv.FormatBool(l.Subtotal)})
		}
		rows = append(rows, []string{g.Title, g.TotalLabel, g.Total, "true"})
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// Document is the JSON shape of a rendered estimate.
type Document struct {
	Selection estimate.Selection         `json:"selection"`
	Breakdown breakdown.DisplayBreakdown `json:"breakdown"`
}

// JSONFormat writes the selection and breakdown as indented JSON.
func JSONFormat(w io.Writer, sel estimate.Selection, b breakdown.DisplayBreakdown) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document{Selection: sel, Breakdown: b}); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}

// Package report renders human-readable summaries of loaded tables and
// preprocessing runs.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sells-group/mvv-cli/internal/loader"
	"github.com/sells-group/mvv-cli/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numStyle    = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col > 0 {
				return numStyle
			}
			return cellStyle
		})
}

// Stats writes the descriptive summary of a loaded table.
func Stats(w io.Writer, s loader.Stats) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %d rows\n", titleStyle.Render("Loaded"), s.Rows)
	fmt.Fprintf(&b, "Columns: %s\n\n", strings.Join(s.Columns, ", "))

	overview := newTable("Metric", "Value").Rows(
		[]string{"Companies", strconv.Itoa(s.Rows)},
		[]string{"Status completed", strconv.Itoa(s.Completed)},
		[]string{"Categories", strconv.Itoa(s.Categories)},
	)
	b.WriteString(overview.String())
	b.WriteString("\n\n")

	if len(s.TopCategories) > 0 {
		cats := newTable("Category", "Companies")
		for _, c := range s.TopCategories {
			cats.Row(c.Category, strconv.Itoa(c.Count))
		}
		b.WriteString(titleStyle.Render("Companies by category"))
		b.WriteString("\n")
		b.WriteString(cats.String())
		b.WriteString("\n\n")
	}

	fill := newTable("Field", "Filled", "Rate")
	for _, f := range s.Fill {
		fill.Row(fieldLabel(f.Field), fmt.Sprintf("%d/%d", f.Filled, f.Total), fmt.Sprintf("%.1f%%", f.Rate()))
	}
	b.WriteString(titleStyle.Render("MVV completeness"))
	b.WriteString("\n")
	b.WriteString(fill.String())
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Summary writes the outcome of a preprocessing run.
func Summary(w io.Writer, b *model.Bundle, skipped int, outputPath string) error {
	t := newTable("Result", "Value").Rows(
		[]string{"Preprocessed", strconv.Itoa(b.TotalCompanies)},
		[]string{"Skipped rows", strconv.Itoa(skipped)},
		[]string{"Complete MVV", fmt.Sprintf("%d/%d", b.CompleteMVVCompanies, b.TotalCompanies)},
		[]string{"Categories", strconv.Itoa(len(b.Categories))},
	)

	var sb strings.Builder
	sb.WriteString(t.String())
	sb.WriteString("\n")
	if outputPath != "" {
		fmt.Fprintf(&sb, "%s %s\n", titleStyle.Render("Wrote"), outputPath)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func fieldLabel(col string) string {
	switch col {
	case model.ColMission:
		return "Mission"
	case model.ColVision:
		return "Vision"
	case model.ColValues:
		return "Values"
	default:
		return col
	}
}

package console

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/rflorenc/databricks-resource-cleaner/internal/models"
)

// Printer writes status lines and the closing summary to a terminal.
type Printer struct {
	w       io.Writer
	success lipgloss.Style
	failure lipgloss.Style
	heading lipgloss.Style
}

// NewPrinter picks a color profile for w; plain writers get no escape codes.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		success: r.NewStyle().Foreground(lipgloss.Color("2")),
		failure: r.NewStyle().Foreground(lipgloss.Color("1")),
		heading: r.NewStyle().Bold(true),
	}
}

// Heading prints a bold section title.
func (p *Printer) Heading(title string) {
	fmt.Fprintln(p.w, p.heading.Render(title))
}

// Line prints one status line, colored by its classification. It has the
// signature of the cleanup logger.
func (p *Printer) Line(line string) {
	if models.Classify(line) == models.LevelSuccess {
		fmt.Fprintln(p.w, p.success.Render("✓ "+line))
		return
	}
	fmt.Fprintln(p.w, p.failure.Render("✗ "+line))
}

// Summary prints the per-category tallies as a table.
func (p *Printer) Summary(tallies []models.Tally) {
	rows := make([][]string, 0, len(tallies))
	for _, t := range tallies {
		label := string(t.Category)
		if rt, ok := models.LookupResourceType(t.Category); ok {
			label = rt.Label
		}
		rows = append(rows, []string{
			label,
			strconv.Itoa(t.Succeeded),
			strconv.Itoa(t.Failed),
			strconv.Itoa(t.Skipped),
		})
	}
	table := tablewriter.NewWriter(p.w)
	table.SetHeader([]string{"Resource", "Deleted", "Failed", "Skipped"})
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
}

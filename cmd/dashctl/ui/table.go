package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders static tabular data with aligned columns. Rows shorter than
// the header are padded; longer rows are truncated to the header width.
type Table struct {
	Title    string
	Headers  []string
	Rows     [][]string
	Selected int // highlighted row index, -1 for none
}

// NewTable creates an empty table.
func NewTable(title string, headers ...string) *Table {
	return &Table{
		Title:    title,
		Headers:  headers,
		Selected: -1,
	}
}

// AddRow appends one row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// View renders the table.
func (t *Table) View(styles Styles) string {
	var sb strings.Builder

	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}
	if len(t.Rows) == 0 {
		sb.WriteString(styles.Muted.Render("  (no data)"))
		return sb.String()
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	headerStyle := styles.Header.Padding(0, 1)
	cellStyle := styles.Body.Padding(0, 1)
	selectedStyle := styles.Selected.Padding(0, 1)

	for i, h := range t.Headers {
		sb.WriteString(headerStyle.Width(widths[i] + 2).Render(h))
	}
	sb.WriteString("\n")

	total := 0
	for _, w := range widths {
		total += w + 2
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("─", total)))
	sb.WriteString("\n")

	for ri, row := range t.Rows {
		style := cellStyle
		if ri == t.Selected {
			style = selectedStyle
		}
		for i := range t.Headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(style.Width(widths[i] + 2).Render(cell))
		}
		if ri < len(t.Rows)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

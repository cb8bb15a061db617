// filepath: internal/cli/render.go
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"scmdash/internal/listview"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#25A065"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	currentStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

// renderTable draws rows under headers. An empty row set renders a
// placeholder instead of an empty grid.
func renderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return mutedStyle.Render("No records found.")
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

// renderPager prints "Showing x-y of n" and the page window, e.g.
// "< 1 ... 4 [5] 6 ... 10 >".
func renderPager(p listview.Pagination) string {
	if p.TotalItems == 0 {
		return mutedStyle.Render("Showing 0 of 0")
	}
	first := (p.Page-1)*p.PageSize + 1
	last := min(p.Page*p.PageSize, p.TotalItems)

	links := make([]string, 0, len(p.Window))
	for _, l := range p.Window {
		switch {
		case l.Ellipsis:
			links = append(links, "...")
		case l.Current:
			links = append(links, currentStyle.Render(strconv.Itoa(l.Page)))
		default:
			links = append(links, strconv.Itoa(l.Page))
		}
	}
	return fmt.Sprintf("Showing %d-%d of %d   %s", first, last, p.TotalItems, strings.Join(links, " "))
}

// renderStats lays out label/value pairs on one line.
func renderStats(pairs ...any) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, fmt.Sprintf("%s %v", mutedStyle.Render(fmt.Sprint(pairs[i])+":"), pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

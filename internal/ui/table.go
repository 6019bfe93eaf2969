package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/portview/internal/conn"
	"github.com/five82/portview/internal/view"
)

// minimum widths per display column, in view.DisplayColumns order
var columnMinWidths = []int{5, 15, 7, 15, 7, 11, 7, 12}

// setRows replaces the table rows and keeps the selection on the same
// connection when it is still present.
func (m *Model) setRows(rows []conn.Connection) {
	var selectedID string
	if cur := m.table.Cursor(); cur >= 0 && cur < len(m.rows) {
		selectedID = m.rows[cur].ID
	}

	m.rows = rows
	m.table.SetColumns(m.tableColumns())
	m.table.SetRows(tableRows(rows))

	if len(rows) == 0 {
		m.table.SetCursor(0)
		return
	}
	if selectedID != "" {
		for i, r := range rows {
			if r.ID == selectedID {
				m.table.SetCursor(i)
				return
			}
		}
	}
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(len(rows) - 1)
	}
}

func tableRows(rows []conn.Connection) []table.Row {
	cols := view.DisplayColumns()
	out := make([]table.Row, 0, len(rows))
	for _, c := range rows {
		cells := make(table.Row, len(cols))
		for i, col := range cols {
			cells[i] = col.Cell(c)
		}
		out = append(out, cells)
	}
	return out
}

// tableColumns builds the headers with sort indicators and widths that
// fill the terminal.
func (m Model) tableColumns() []table.Column {
	cols := view.DisplayColumns()
	widths := columnWidths(m.width, len(cols))
	out := make([]table.Column, len(cols))
	for i, col := range cols {
		title := fmt.Sprintf("%d %s", i+1, col.Title())
		if m.sort.Column == col {
			title += " " + sortArrow(m.sort.Direction)
		}
		out[i] = table.Column{Title: title, Width: widths[i]}
	}
	return out
}

func sortArrow(d view.Direction) string {
	if d == view.Desc {
		return "▼"
	}
	return "▲"
}

// columnWidths spreads the spare width over the address and process
// columns.
func columnWidths(total, n int) []int {
	widths := make([]int, n)
	copy(widths, columnMinWidths)
	used := 0
	for _, w := range widths {
		used += w + 2 // cell padding
	}
	spare := total - used
	if spare <= 0 {
		return widths
	}
	flexible := []int{1, 3, 7} // local address, remote address, process
	share := spare / len(flexible)
	for _, idx := range flexible {
		if idx < n {
			widths[idx] += share
		}
	}
	return widths
}

func (m *Model) resizeTable() {
	m.table.SetWidth(m.width)
	m.table.SetHeight(max(m.contentHeight()-1, 3))
	m.table.SetColumns(m.tableColumns())
}

func (m Model) contentHeight() int {
	return m.height - 3 // header, status line, command bar
}

func (m *Model) applyTableStyles() {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		BorderBottom(true).
		Bold(true).
		Foreground(lipgloss.Color(m.theme.Accent))
	s.Cell = s.Cell.Foreground(lipgloss.Color(m.theme.Text))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(m.theme.SelectionText)).
		Background(lipgloss.Color(m.theme.SelectionBg)).
		Bold(false)
	m.table.SetStyles(s)
}

// renderConnections renders the connection table or its placeholder.
func (m Model) renderConnections() string {
	styles := m.theme.Styles()
	height := m.contentHeight()

	switch {
	case m.loading:
		msg := styles.MutedText.Render("Loading connections…")
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, msg)
	case len(m.rows) == 0:
		msg := "No connections"
		if m.filters.Active() {
			msg = "No connections match the current filters (c to clear)"
		}
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, styles.MutedText.Render(msg))
	}
	return m.table.View()
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}

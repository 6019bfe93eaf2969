package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/portview/internal/view"
)

// renderHeader renders the summary line and the status line.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	return m.summaryLine(styles).Render(m.width) + "\n" + m.statusLine(styles).Render(m.width)
}

// summaryLine is the logo, the statistics and the data origin.
func (m Model) summaryLine(styles Styles) *barLine {
	st := m.snapshot.Statistics
	line := newBarLine(m.theme.Surface).
		Add("portview", styles.Logo).
		Add(fmt.Sprintf("%d total", st.Total), styles.Text).
		Add(fmt.Sprintf("TCP %d", st.TCP), styles.AccentText).
		Add(fmt.Sprintf("UDP %d", st.UDP), styles.InfoText).
		Add(fmt.Sprintf("listening %d", st.Listening), styles.StateStyle("listening")).
		Add(fmt.Sprintf("established %d", st.Established), styles.StateStyle("established"))

	switch {
	case m.loading:
		line.AddRendered(styles.Badge(m.theme.Info).Render("LOADING"))
	case m.snapshot.IsFallback():
		line.AddRendered(styles.Badge(m.theme.Warning).Render("SAMPLE DATA"))
	case m.snapshot.Populated:
		line.AddRendered(styles.Badge(m.theme.Success).Render("LIVE"))
	}

	line.Add(m.refreshLabel(), styles.MutedText)
	if p := m.platform.Platform; p != "" {
		if !m.platform.Supported {
			p += " (unsupported)"
		}
		line.Add(p, styles.FaintText)
	}
	return line
}

func (m Model) refreshLabel() string {
	if m.refreshing {
		return "refreshing…"
	}
	secs := int(m.interval / time.Second)
	if m.auto {
		return fmt.Sprintf("auto %ds", secs)
	}
	return fmt.Sprintf("manual (%ds)", secs)
}

// statusLine shows the active criteria and the last fetch outcome.
func (m Model) statusLine(styles Styles) *barLine {
	line := newBarLine(m.theme.Surface).Add(filterSummary(m.filters), styles.Text)
	if m.sort.Column != view.ColumnNone {
		line.Add(fmt.Sprintf("sort %s %s", m.sort.Column.Title(), sortArrow(m.sort.Direction)), styles.MutedText)
	}
	line.Add(fmt.Sprintf("%d shown", len(m.rows)), styles.MutedText)
	line.Add(m.formatTimestamp(), styles.FaintText)

	switch {
	case m.notice != "":
		line.Add(m.notice, styles.WarningText)
	case m.snapshot.LastError != nil:
		style := styles.WarningText
		if m.snapshot.IsOffline() {
			style = styles.DangerText
		}
		line.Add(truncate(m.snapshot.LastError.Diagnostic(), max(m.width/2, 20)), style)
	}
	return line
}

func filterSummary(f view.FilterCriteria) string {
	protocol := f.Protocol
	if protocol == "" {
		protocol = view.ProtocolAll
	}
	parts := []string{"proto " + protocol}
	if p := strings.TrimSpace(f.PortPrefix); p != "" {
		parts = append(parts, "port "+p+"*")
	}
	if p := strings.TrimSpace(f.ProcessSubstring); p != "" {
		parts = append(parts, fmt.Sprintf("process ~%q", p))
	}
	return strings.Join(parts, " · ")
}

func (m Model) formatTimestamp() string {
	if !m.snapshot.Populated || m.snapshot.LastUpdated.IsZero() {
		return ""
	}
	ts := "updated " + m.snapshot.LastUpdated.Local().Format("15:04:05")
	if d := m.snapshot.FetchDuration; d > 0 {
		ts += fmt.Sprintf(" in %s", d.Round(time.Millisecond))
	}
	return ts
}

// renderCommandBar renders the key hints for the active view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()

	var hints [][2]string
	switch m.currentView {
	case ViewLogs:
		follow := "follow"
		if m.logState.follow {
			follow = "pause"
		}
		hints = [][2]string{{"space", follow}, {"j/k", "scroll"}, {"l", "connections"}, {"?", "help"}, {"q", "quit"}}
	default:
		auto := "auto on"
		if m.auto {
			auto = "auto off"
		}
		hints = [][2]string{
			{"r", "refresh"}, {"a", auto}, {"+/-", "interval"},
			{"p", "proto"}, {"/", "port"}, {"f", "process"}, {"c", "clear"},
			{"1-8", "sort"}, {"l", "logs"}, {"?", "help"}, {"q", "quit"},
		}
	}

	bg := lipgloss.Color(m.theme.Background)
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent)).Background(bg).Bold(true)
	descStyle := styles.MutedText.Background(bg)
	space := lipgloss.NewStyle().Background(bg).Render(" ")

	line := newBarLine(m.theme.Background)
	for _, h := range hints {
		line.AddRendered(keyStyle.Render(h[0]) + space + descStyle.Render(h[1]))
	}
	return line.Render(m.width)
}

package ui

import (
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/portview/internal/logtail"
)

// Log refresh constants
const (
	logRefreshInterval = time.Second
	logTailLimit       = 500
)

// logState holds all log-related state.
type logState struct {
	path        string
	rawLines    []string
	follow      bool
	lastRefresh time.Time
	err         error
}

func newLogState(path string) logState {
	return logState{path: path, follow: true}
}

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width, 1), max(m.contentHeight()-1, 1))
}

// updateLogViewport resizes the viewport and re-renders its content.
func (m *Model) updateLogViewport() {
	if m.logViewport.Width == 0 {
		m.initLogViewport()
	}
	m.logViewport.Width = max(m.width, 1)
	m.logViewport.Height = max(m.contentHeight()-1, 1) // status line below
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.Background))

	m.logViewport.SetContent(formatLogLines(m.logState.rawLines, m.theme.Styles()))
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	var status string
	switch {
	case m.logState.path == "":
		status = styles.MutedText.Render("file logging is disabled")
	case m.logState.err != nil:
		status = styles.DangerText.Render(m.logState.err.Error())
	case len(m.logState.rawLines) == 0:
		status = styles.MutedText.Render("no log lines yet in " + m.logState.path)
	default:
		mode := "paused"
		if m.logState.follow {
			mode = "following"
		}
		status = styles.FaintText.Render(m.logState.path + " · " + mode)
	}
	return m.logViewport.View() + "\n" + status
}

// handleLogsKey processes keyboard input for logs view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.currentView = ViewConnections
		return m, nil

	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
		}
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.logState.follow = false
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logState.follow = true
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.logState.follow = false
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.logState.follow = false
		return m, nil

	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
		m.logState.follow = false
		return m, nil

	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
		m.logState.follow = false
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.PageDown()
		m.logState.follow = false
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.PageUp()
		m.logState.follow = false
		return m, nil
	}

	return m, nil
}

// refreshLogs reads the tail of the log file.
func (m *Model) refreshLogs() tea.Cmd {
	if m.logState.path == "" {
		return nil
	}
	if time.Since(m.logState.lastRefresh) < logRefreshInterval {
		return nil
	}
	m.logState.lastRefresh = time.Now()

	path := m.logState.path
	return func() tea.Msg {
		lines, err := logtail.Read(path, logTailLimit)
		if err != nil {
			return logErrorMsg{err: err}
		}
		return logBatchMsg{lines: lines}
	}
}

// Log messages

type logBatchMsg struct {
	lines []string
}

type logErrorMsg struct {
	err error
}

// handleLogBatch replaces the buffered lines when the tail changed.
func (m *Model) handleLogBatch(msg logBatchMsg) {
	m.logState.err = nil
	if slices.Equal(msg.lines, m.logState.rawLines) {
		return
	}
	m.logState.rawLines = msg.lines
	m.updateLogViewport()
}

package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/portview/internal/conn"
	"github.com/five82/portview/internal/prefs"
	"github.com/five82/portview/internal/source"
	"github.com/five82/portview/internal/state"
	"github.com/five82/portview/internal/view"
)

// View represents the current active view.
type View int

const (
	ViewConnections View = iota
	ViewLogs
)

// Pipeline is the connection pipeline the UI drives. It reads the latest
// snapshot and derived rows and forwards user actions.
type Pipeline interface {
	Snapshot() state.Snapshot
	Filtered() []conn.Connection
	IsLoading() bool

	Filters() view.FilterCriteria
	SetFilters(view.FilterCriteria)
	UpdateFilter(key, value string) error
	Sort() view.SortCriteria
	SortBy(view.Column) view.SortCriteria

	RefreshAsync()
	AutoRefresh() bool
	ToggleAutoRefresh() bool
	RefreshInterval() time.Duration
	SetRefreshInterval(seconds int)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Monitor   Pipeline
	LogPath   string
	ThemeName string
	Prefs     prefs.Prefs
	PrefsPath string
	Platform  source.PlatformInfo
	PollTick  time.Duration // how often the UI re-reads the pipeline
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	monitor   Pipeline
	keys      keyMap
	prefs     prefs.Prefs
	prefsPath string
	platform  source.PlatformInfo
	pollTick  time.Duration

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	modal       Modal
	notice      string // last action feedback, shown in the status line
	refreshing  bool   // manual refresh requested and not yet applied
	pendingSeq  uint64

	// Data state
	snapshot state.Snapshot
	rows     []conn.Connection
	loading  bool
	filters  view.FilterCriteria
	sort     view.SortCriteria
	auto     bool
	interval time.Duration

	table table.Model

	// Log state
	logViewport viewport.Model
	logState    logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = 250 * time.Millisecond
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = opts.Prefs.Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	keys := DefaultKeyMap()
	m := Model{
		monitor:   opts.Monitor,
		keys:      keys,
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		platform:  opts.Platform,
		pollTick:  pollTick,
		theme:     GetTheme(themeName),
		logState:  newLogState(opts.LogPath),
		table: table.New(
			table.WithFocused(true),
			table.WithKeyMap(keys.tableKeyMap()),
		),
	}
	m.applyTableStyles()
	if m.monitor != nil {
		m.syncFromPipeline()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.monitor != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.monitor))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.resizeTable()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(msg)
		return m, nil

	case filterSubmittedMsg:
		if m.monitor == nil {
			return m, nil
		}
		if err := m.monitor.UpdateFilter(msg.key, msg.value); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.notice = ""
		m.syncFromPipeline()
		m.savePrefs()
		return m, nil

	case logBatchMsg:
		m.handleLogBatch(msg)
		return m, nil

	case logErrorMsg:
		m.logState.err = msg.err
		return m, nil
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.applyTableStyles()
		m.updateLogViewport()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs):
		if m.currentView == ViewLogs {
			m.currentView = ViewConnections
			return m, nil
		}
		m.currentView = ViewLogs
		return m, m.refreshLogs()
	}

	if m.currentView == ViewLogs {
		return m.handleLogsKey(msg)
	}
	return m.handleConnectionsKey(msg)
}

// handleConnectionsKey processes keyboard input for the connection table.
func (m Model) handleConnectionsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.monitor == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Refresh):
		m.refreshing = true
		m.pendingSeq = m.snapshot.Seq
		m.monitor.RefreshAsync()
		return m, fetchSnapshotCmd(m.monitor)

	case key.Matches(msg, m.keys.ToggleAuto):
		m.monitor.ToggleAutoRefresh()
		m.syncFromPipeline()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Faster):
		m.stepInterval(-1)
		return m, nil

	case key.Matches(msg, m.keys.Slower):
		m.stepInterval(1)
		return m, nil

	case key.Matches(msg, m.keys.CycleProtocol):
		next := view.NextProtocol(m.filters.Protocol)
		if err := m.monitor.UpdateFilter(view.FilterProtocol, next); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.syncFromPipeline()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.FilterPort):
		m.modal = newFilterModal(view.FilterPort, m.filters.PortPrefix)
		return m, nil

	case key.Matches(msg, m.keys.FilterProcess):
		m.modal = newFilterModal(view.FilterProcess, m.filters.ProcessSubstring)
		return m, nil

	case key.Matches(msg, m.keys.ClearFilters), key.Matches(msg, m.keys.Escape):
		if !m.filters.Active() {
			return m, nil
		}
		m.monitor.SetFilters(view.DefaultFilter())
		m.syncFromPipeline()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.SortColumn):
		col, ok := sortColumnForKey(msg.String())
		if !ok {
			return m, nil
		}
		m.monitor.SortBy(col)
		m.syncFromPipeline()
		m.savePrefs()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd, closed := m.modal.Update(msg, m.keys)
	if closed {
		m.modal = nil
	} else {
		m.modal = next
	}
	return m, cmd
}

// stepInterval moves the refresh interval by delta seconds.
func (m *Model) stepInterval(delta int) {
	seconds := int(m.interval/time.Second) + delta
	if seconds < 1 {
		seconds = 1
	}
	m.monitor.SetRefreshInterval(seconds)
	m.syncFromPipeline()
	m.savePrefs()
}

// sortColumnForKey maps the digit keys to display columns, 1-based.
func sortColumnForKey(k string) (view.Column, bool) {
	if len(k) != 1 || k[0] < '1' || k[0] > '9' {
		return view.ColumnNone, false
	}
	cols := view.DisplayColumns()
	idx := int(k[0] - '1')
	if idx >= len(cols) {
		return view.ColumnNone, false
	}
	return cols[idx], true
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.monitor != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.monitor))
	}

	if m.currentView == ViewLogs && m.logState.follow {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, tickCmd(m.pollTick))

	return m, tea.Batch(cmds...)
}

// syncFromPipeline copies the pipeline's criteria and refresh settings
// into the model and re-reads the derived rows.
func (m *Model) syncFromPipeline() {
	m.applySnapshot(readSnapshot(m.monitor))
}

func (m *Model) applySnapshot(msg snapshotMsg) {
	m.snapshot = msg.snapshot
	m.loading = msg.loading
	m.filters = msg.filters
	m.sort = msg.sort
	m.auto = msg.auto
	m.interval = msg.interval
	if m.refreshing && msg.snapshot.Seq > m.pendingSeq {
		m.refreshing = false
	}
	m.setRows(msg.rows)
}

// savePrefs records the current view state in the preferences file.
func (m *Model) savePrefs() {
	m.prefs.Theme = m.theme.Name
	m.prefs.RefreshSeconds = int(m.interval / time.Second)
	auto := m.auto
	m.prefs.AutoRefresh = &auto
	m.prefs.Filter = prefs.Filter{
		Protocol: m.filters.Protocol,
		Port:     m.filters.PortPrefix,
		Process:  m.filters.ProcessSubstring,
	}
	m.prefs.Sort = prefs.Sort{
		Column:    m.sort.Column.String(),
		Direction: m.sort.Direction.String(),
	}
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.notice = "save prefs: " + err.Error()
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	switch m.currentView {
	case ViewLogs:
		b.WriteString(m.renderLogs())
	default:
		b.WriteString(m.renderConnections())
	}

	return b.String()
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	snapshot state.Snapshot
	rows     []conn.Connection
	loading  bool
	filters  view.FilterCriteria
	sort     view.SortCriteria
	auto     bool
	interval time.Duration
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(p Pipeline) tea.Cmd {
	return func() tea.Msg {
		return readSnapshot(p)
	}
}

func readSnapshot(p Pipeline) snapshotMsg {
	return snapshotMsg{
		snapshot: p.Snapshot(),
		rows:     p.Filtered(),
		loading:  p.IsLoading(),
		filters:  p.Filters(),
		sort:     p.Sort(),
		auto:     p.AutoRefresh(),
		interval: p.RefreshInterval(),
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	model := New(opts)
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // Outermost background
	Surface    string // Header and command bar

	// Table colors
	SelectionBg   string // Selected row background
	SelectionText string // Selected row text

	// Border colors
	Border      string
	BorderFocus string

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// Connection state colors keyed by normalised state
	StateColors map[string]string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	fg := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),
		Logo:        fg(t.Accent).Bold(true),

		stateColors: t.StateColors,
		background:  t.Background,
		muted:       t.Muted,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Logo lipgloss.Style

	stateColors map[string]string
	background  string
	muted       string
}

// StateStyle returns a foreground style for a connection state such as
// "LISTENING" or "time_wait".
func (s Styles) StateStyle(state string) lipgloss.Style {
	color := s.stateColors[strings.ToLower(strings.TrimSpace(state))]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Badge returns a filled label style in the given color.
func (s Styles) Badge(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Bold(true).
		Padding(0, 1)
}

// Theme definitions

const (
	themeSystem = "System"
	themeDark   = "Dark"
	themeLight  = "Light"
)

var themeOrder = []string{themeSystem, themeDark, themeLight}

// hasDarkBackground probes the terminal. Tests replace it.
var hasDarkBackground = lipgloss.HasDarkBackground

// GetTheme returns a theme by name, case-insensitively. "System" follows
// the terminal background; unknown names fall back to System.
func GetTheme(name string) Theme {
	switch {
	case strings.EqualFold(name, themeDark):
		return darkTheme()
	case strings.EqualFold(name, themeLight):
		return lightTheme()
	}
	t := lightTheme()
	if hasDarkBackground() {
		t = darkTheme()
	}
	t.Name = themeSystem
	return t
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if strings.EqualFold(name, current) {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func darkTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: themeDark,

		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900

		SelectionBg:   "#0284c7", // sky-600
		SelectionText: "#f8fafc", // slate-50

		Border:      "#334155", // slate-700
		BorderFocus: "#38bdf8", // sky-400

		Text:    "#f1f5f9", // slate-100
		Muted:   "#94a3b8", // slate-400
		Faint:   "#64748b", // slate-500
		Accent:  "#38bdf8", // sky-400
		Success: "#22c55e", // green-500
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500
		Info:    "#06b6d4", // cyan-500

		StateColors: map[string]string{
			"listening":   "#38bdf8", // sky-400
			"established": "#22c55e", // green-500
			"time_wait":   "#f59e0b", // amber-500
			"close_wait":  "#f97316", // orange-500
			"syn_sent":    "#22d3ee", // cyan-400
			"syn_recv":    "#22d3ee", // cyan-400
			"fin_wait1":   "#f59e0b", // amber-500
			"fin_wait2":   "#f59e0b", // amber-500
			"last_ack":    "#f97316", // orange-500
			"closing":     "#f97316", // orange-500
			"closed":      "#64748b", // slate-500
		},
	}
}

func lightTheme() Theme {
	// Tailwind CSS Slate/Sky palette, light surfaces
	return Theme{
		Name: themeLight,

		Background: "#f8fafc", // slate-50
		Surface:    "#e2e8f0", // slate-200

		SelectionBg:   "#0369a1", // sky-700
		SelectionText: "#f8fafc", // slate-50

		Border:      "#94a3b8", // slate-400
		BorderFocus: "#0284c7", // sky-600

		Text:    "#0f172a", // slate-900
		Muted:   "#475569", // slate-600
		Faint:   "#64748b", // slate-500
		Accent:  "#0369a1", // sky-700
		Success: "#15803d", // green-700
		Warning: "#b45309", // amber-700
		Danger:  "#b91c1c", // red-700
		Info:    "#0e7490", // cyan-700

		StateColors: map[string]string{
			"listening":   "#0369a1", // sky-700
			"established": "#15803d", // green-700
			"time_wait":   "#b45309", // amber-700
			"close_wait":  "#c2410c", // orange-700
			"syn_sent":    "#0e7490", // cyan-700
			"syn_recv":    "#0e7490", // cyan-700
			"fin_wait1":   "#b45309", // amber-700
			"fin_wait2":   "#b45309", // amber-700
			"last_ack":    "#c2410c", // orange-700
			"closing":     "#c2410c", // orange-700
			"closed":      "#64748b", // slate-500
		},
	}
}

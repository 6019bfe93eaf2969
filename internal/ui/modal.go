package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/portview/internal/view"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// filterSubmittedMsg carries the value entered in a filterModal.
type filterSubmittedMsg struct {
	key   string
	value string
}

// filterModal edits one text filter field.
type filterModal struct {
	key   string
	title string
	input textinput.Model
}

func newFilterModal(filterKey, current string) filterModal {
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 64
	in.Width = 30
	in.SetValue(current)
	in.CursorEnd()
	in.Focus()

	title := "Filter by process name"
	switch filterKey {
	case view.FilterPort:
		title = "Filter by port prefix"
		in.Placeholder = "e.g. 80"
		in.CharLimit = 5
		in.Validate = digitsOnly
	default:
		in.Placeholder = "substring, case-insensitive"
	}
	return filterModal{key: filterKey, title: title, input: in}
}

var errNotDigits = errors.New("port prefix must be digits")

func digitsOnly(s string) error {
	for _, r := range strings.TrimSpace(s) {
		if r < '0' || r > '9' {
			return errNotDigits
		}
	}
	return nil
}

func (f filterModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, keys.Confirm):
			if f.input.Err != nil {
				return f, nil, false
			}
			value := strings.TrimSpace(f.input.Value())
			filterKey := f.key
			return f, func() tea.Msg { return filterSubmittedMsg{key: filterKey, value: value} }, true
		case key.Matches(k, keys.Escape):
			return f, nil, true
		}
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd, false
}

func (f filterModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(f.title))
	b.WriteString("\n\n")
	b.WriteString(f.input.View())
	b.WriteString("\n")
	if f.input.Err != nil {
		b.WriteString(styles.DangerText.Render(f.input.Err.Error()))
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("enter apply · esc cancel · empty clears"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.BorderFocus)).
		Padding(1, 2).
		Width(44).
		Render(b.String())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

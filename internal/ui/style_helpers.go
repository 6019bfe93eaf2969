package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// barLine assembles one header or command bar line on a solid background.
// Segments and the gaps between them are all rendered with the background
// so no terminal default color shows through between styled runs.
type barLine struct {
	bg    lipgloss.Color
	gap   string
	parts []string
}

func newBarLine(bgColor string) *barLine {
	bg := lipgloss.Color(bgColor)
	return &barLine{
		bg:  bg,
		gap: lipgloss.NewStyle().Background(bg).Render("  "),
	}
}

// Add appends text rendered with style on the line background. Empty text
// is skipped.
func (l *barLine) Add(text string, style lipgloss.Style) *barLine {
	if text == "" {
		return l
	}
	l.parts = append(l.parts, style.Background(l.bg).Render(text))
	return l
}

// AddRendered appends an already styled segment, such as a badge that
// carries its own background.
func (l *barLine) AddRendered(segment string) *barLine {
	if segment != "" {
		l.parts = append(l.parts, segment)
	}
	return l
}

// Render joins the segments and pads the result to width.
func (l *barLine) Render(width int) string {
	line := strings.Join(l.parts, l.gap)
	return lipgloss.NewStyle().Background(l.bg).Width(max(width, 0)).MaxWidth(max(width, 1)).Render(line)
}

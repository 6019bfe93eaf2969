package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/portview/internal/logtail"
)

// logLine is a log entry split into display parts.
type logLine struct {
	timestamp string
	level     string
	message   string
	fields    string
	raw       bool
}

func parseLogLine(line string) logLine {
	e, ok := logtail.ParseEntry(line)
	if !ok {
		return logLine{message: line, raw: true}
	}
	ts := ""
	if !e.Time.IsZero() {
		ts = e.Time.In(time.Local).Format("2006-01-02 15:04:05")
	}
	level := strings.ToUpper(strings.TrimSpace(e.Level))
	if level == "" {
		level = "INFO"
	}
	message := strings.TrimSpace(e.Message)
	if name := strings.TrimSpace(e.Logger); name != "" {
		message = "[" + name + "] " + message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Value == "" {
			continue
		}
		parts = append(parts, f.Key+"="+f.Value)
	}
	return logLine{
		timestamp: ts,
		level:     level,
		message:   message,
		fields:    strings.Join(parts, " "),
	}
}

// String renders the line without styling.
func (l logLine) String() string {
	if l.raw {
		return l.message
	}
	parts := make([]string, 0, 4)
	if l.timestamp != "" {
		parts = append(parts, l.timestamp)
	}
	parts = append(parts, l.level)
	if l.message != "" {
		parts = append(parts, l.message)
	}
	if l.fields != "" {
		parts = append(parts, l.fields)
	}
	return strings.Join(parts, " ")
}

func (l logLine) render(styles Styles) string {
	if l.raw {
		return styles.MutedText.Render(l.message)
	}
	parts := make([]string, 0, 4)
	if l.timestamp != "" {
		parts = append(parts, styles.FaintText.Render(l.timestamp))
	}
	parts = append(parts, levelStyle(l.level, styles).Render(l.level))
	if l.message != "" {
		parts = append(parts, styles.Text.Render(l.message))
	}
	if l.fields != "" {
		parts = append(parts, styles.MutedText.Render(l.fields))
	}
	return strings.Join(parts, " ")
}

func levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "ERROR", "DPANIC", "PANIC", "FATAL":
		return styles.DangerText
	case "WARN":
		return styles.WarningText.Bold(true)
	case "DEBUG":
		return styles.InfoText
	default:
		return styles.SuccessText
	}
}

func formatLogLines(lines []string, styles Styles) string {
	if len(lines) == 0 {
		return ""
	}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, parseLogLine(line).render(styles))
	}
	return strings.Join(out, "\n")
}

package ui

import (
	"testing"
	"time"
)

func TestParseLogLine(t *testing.T) {
	oldLocal := time.Local
	time.Local = time.FixedZone("TestLocal", -5*60*60)
	defer func() {
		time.Local = oldLocal
	}()

	line := `{"level":"warn","ts":"2025-12-13T10:11:12Z","msg":" connection fetch failed ","source":"lsof","kind":"transport"}`
	got := parseLogLine(line).String()
	want := "2025-12-13 05:11:12 WARN connection fetch failed kind=transport source=lsof"
	if got != want {
		t.Fatalf("parseLogLine = %q, want %q", got, want)
	}
}

func TestParseLogLineDefaultsLevel(t *testing.T) {
	got := parseLogLine(`{"msg":"hello","logger":"agent"}`).String()
	if got != "INFO [agent] hello" {
		t.Fatalf("parseLogLine = %q, want INFO [agent] hello", got)
	}
}

func TestParseLogLinePlainText(t *testing.T) {
	line := "panic: runtime error"
	l := parseLogLine(line)
	if !l.raw || l.String() != line {
		t.Fatalf("parseLogLine(%q) = %+v, want raw passthrough", line, l)
	}
}

func TestFormatLogLinesEmpty(t *testing.T) {
	if got := formatLogLines(nil, GetTheme("Dark").Styles()); got != "" {
		t.Fatalf("formatLogLines(nil) = %q, want empty", got)
	}
}

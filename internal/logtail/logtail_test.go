package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "read all (0)", maxLines: 0, expected: expectedAll},
		{name: "read all (negative)", maxLines: -1, expected: expectedAll},
		{name: "read partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "read more than exists (20)", maxLines: 20, expected: expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestParseEntry(t *testing.T) {
	line := `{"level":"warn","ts":"2026-03-01T10:11:12.5Z","msg":"connection fetch failed","source":"lsof","kind":"missing_dependency","duration":0.25,"ok":false}`
	e, ok := ParseEntry(line)
	if !ok {
		t.Fatalf("ParseEntry(%q) ok = false", line)
	}
	if e.Level != "warn" || e.Message != "connection fetch failed" {
		t.Fatalf("entry = %+v, want warn / connection fetch failed", e)
	}
	want := time.Date(2026, 3, 1, 10, 11, 12, 500_000_000, time.UTC)
	if !e.Time.Equal(want) {
		t.Fatalf("Time = %v, want %v", e.Time, want)
	}
	fields := []Field{
		{Key: "duration", Value: "0.25"},
		{Key: "kind", Value: "missing_dependency"},
		{Key: "ok", Value: "false"},
		{Key: "source", Value: "lsof"},
	}
	if !reflect.DeepEqual(e.Fields, fields) {
		t.Fatalf("Fields = %v, want %v", e.Fields, fields)
	}
}

func TestParseEntryNested(t *testing.T) {
	e, ok := ParseEntry(`{"msg":"x","filter":{"port":"80"}}`)
	if !ok {
		t.Fatal("ParseEntry ok = false")
	}
	if len(e.Fields) != 1 || e.Fields[0].Value != `{"port":"80"}` {
		t.Fatalf("Fields = %v, want nested object as JSON", e.Fields)
	}
}

func TestParseEntryRejectsPlainText(t *testing.T) {
	for _, line := range []string{"", "panic: boom", "{not json"} {
		if _, ok := ParseEntry(line); ok {
			t.Fatalf("ParseEntry(%q) ok = true, want false", line)
		}
	}
}

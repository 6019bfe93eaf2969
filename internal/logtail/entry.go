package logtail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Entry is one structured log line as written by the JSON file sink.
type Entry struct {
	Time    time.Time
	Level   string
	Logger  string
	Message string
	Fields  []Field
}

// Field is an extra key/value pair of an Entry, rendered as text.
type Field struct {
	Key   string
	Value string
}

var reservedKeys = map[string]bool{
	"ts":     true,
	"level":  true,
	"logger": true,
	"msg":    true,
	"caller": true,
}

// ParseEntry decodes a JSON log line. It reports false for lines that are
// not JSON objects, such as panics written straight to the file.
func ParseEntry(line string) (Entry, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return Entry{}, false
	}
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return Entry{}, false
	}

	e := Entry{
		Level:   stringValue(raw["level"]),
		Logger:  stringValue(raw["logger"]),
		Message: stringValue(raw["msg"]),
	}
	if ts := stringValue(raw["ts"]); ts != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Time = parsed
		}
	}
	for k, v := range raw {
		if reservedKeys[k] {
			continue
		}
		e.Fields = append(e.Fields, Field{Key: k, Value: stringValue(v)})
	}
	slices.SortFunc(e.Fields, func(a, b Field) int { return strings.Compare(a.Key, b.Key) })
	return e, true
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return fmt.Sprint(t)
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return fmt.Sprint(t)
		}
		return strings.TrimSpace(buf.String())
	}
}

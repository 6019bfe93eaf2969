package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	require.Equal(t, zapcore.InfoLevel, lvl)

	lvl, err = ParseLevel(" DEBUG ")
	require.NoError(t, err)
	require.Equal(t, zapcore.DebugLevel, lvl)

	_, err = ParseLevel("verbose")
	require.Error(t, err)
}

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "portview.log")
	log, closeFn, err := New(Options{Filename: path, Level: "info"})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("connection fetch complete", zap.String("origin", "live"), zap.Int("count", 3))
	require.NoError(t, closeFn())
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "info", entry["level"])
	require.Equal(t, "connection fetch complete", entry["msg"])
	require.Equal(t, "live", entry["origin"])
	require.EqualValues(t, 3, entry["count"])
}

func TestNewConsoleWriter(t *testing.T) {
	var buf bytes.Buffer
	log, closeFn, err := New(Options{Writer: &buf, Level: "warn"})
	require.NoError(t, err)
	log.Info("quiet")
	log.Warn("loud")
	require.NoError(t, closeFn())

	require.NotContains(t, buf.String(), "quiet")
	require.Contains(t, buf.String(), "WARN")
	require.Contains(t, buf.String(), "loud")
}

func TestNewNoSinksIsNop(t *testing.T) {
	log, closeFn, err := New(Options{})
	require.NoError(t, err)
	log.Info("dropped")
	require.NoError(t, closeFn())
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})
	require.Error(t, err)
}

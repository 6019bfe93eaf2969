package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 3
	defaultMaxAgeDays = 14
)

var levels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// Options is the option set for New.
type Options struct {
	// Filename is the JSON log file. Rotated files are kept next to it.
	Filename string

	// Writer, when set, receives console-formatted lines in addition to the
	// file. Leave nil while the TUI owns the terminal.
	Writer io.Writer

	// Level is one of debug, info, warn, error. Empty means info.
	Level string

	MaxSize    int // megabytes before rotation
	MaxBackups int
	MaxAge     int // days
}

// ParseLevel maps a level name to its zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, ok := levels[key]
	if !ok {
		return zapcore.InfoLevel, errors.Errorf("unknown log level %q (want debug, info, warn or error)", name)
	}
	return lvl, nil
}

// New builds a logger from opts. The returned close func flushes and
// releases the log file; it is safe to call more than once.
func New(opts Options) (*zap.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339Nano)
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	var (
		cores []zapcore.Core
		file  *lumberjack.Logger
	)
	if opts.Filename != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Filename), 0o755); err != nil {
			return nil, nil, errors.Wrapf(err, "create log directory for %s", opts.Filename)
		}
		file = &lumberjack.Logger{
			Filename:   opts.Filename,
			MaxSize:    orDefault(opts.MaxSize, defaultMaxSizeMB),
			MaxBackups: orDefault(opts.MaxBackups, defaultMaxBackups),
			MaxAge:     orDefault(opts.MaxAge, defaultMaxAgeDays),
			LocalTime:  true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(file), level))
	}
	if opts.Writer != nil {
		consoleConfig := encoderConfig
		consoleConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		consoleConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.AddSync(opts.Writer), level))
	}
	if len(cores) == 0 {
		return zap.NewNop(), func() error { return nil }, nil
	}

	logger := zap.New(zapcore.NewTee(cores...))
	closed := false
	closeFn := func() error {
		if closed {
			return nil
		}
		closed = true
		_ = logger.Sync()
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return logger, closeFn, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

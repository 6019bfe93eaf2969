package app

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/five82/portview/internal/config"
	"github.com/five82/portview/internal/logging"
)

// Env carries the process-wide collaborators that would otherwise be
// globals. It is built once per command and closed on exit.
type Env struct {
	Config config.Config
	Log    *zap.Logger

	closeLog func() error
}

// NewEnv opens the log sink described by cfg. When console is non-nil log
// lines are mirrored to it as well.
func NewEnv(cfg config.Config, console io.Writer) (*Env, error) {
	log, closeLog, err := logging.New(logging.Options{
		Filename: cfg.LogFile,
		Writer:   console,
		Level:    cfg.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	return &Env{Config: cfg, Log: log, closeLog: closeLog}, nil
}

// Close flushes and releases the log sink.
func (e *Env) Close() error {
	if e == nil || e.closeLog == nil {
		return nil
	}
	return e.closeLog()
}

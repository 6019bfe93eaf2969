package app

import (
	"context"
	"io"
	"strings"

	"github.com/five82/portview/internal/agent"
	"github.com/five82/portview/internal/source"
)

// ServeOptions configure the agent.
type ServeOptions struct {
	Options
	ListenAddr string // overrides config listen_addr when set
	Console    io.Writer
}

// Serve runs the HTTP agent over the configured local source until ctx is
// cancelled. A remote source is replaced by local system enumeration.
func Serve(ctx context.Context, opts ServeOptions) error {
	cfg, err := loadConfig(opts.Options)
	if err != nil {
		return err
	}
	if cfg.Source == source.KindRemote {
		cfg.Source = source.KindAuto
	}
	env, err := NewEnv(cfg, opts.Console)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}

	addr := cfg.ListenAddr
	if a := strings.TrimSpace(opts.ListenAddr); a != "" {
		addr = a
	}
	return agent.New(fetcher, env.Log).ListenAndServe(ctx, addr)
}

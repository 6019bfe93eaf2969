package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/five82/portview/internal/config"
	"github.com/five82/portview/internal/prefs"
	"github.com/five82/portview/internal/source"
	"github.com/five82/portview/internal/ui"
	"github.com/five82/portview/internal/view"
)

// Options configure the portview application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/portview/prefs.toml
	PollEvery  int    // seconds; zero uses config
	Source     string // overrides config source when set
}

// Run boots the portview TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	env, err := NewEnv(cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	userPrefs := loadPrefs(opts.PrefsPath, env.Log)

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}

	filters, sort, err := initialCriteria(cfg, userPrefs)
	if err != nil {
		env.Log.Warn("ignoring invalid saved view state", zap.Error(err))
		filters, sort = view.DefaultFilter(), view.SortCriteria{}
	}

	interval := cfg.RefreshInterval()
	autoRefresh := cfg.AutoRefresh
	if opts.PollEvery <= 0 {
		if userPrefs.RefreshSeconds > 0 {
			interval = time.Duration(userPrefs.RefreshSeconds) * time.Second
		}
		if userPrefs.AutoRefresh != nil {
			autoRefresh = *userPrefs.AutoRefresh
		}
	}

	env.Log.Info("portview starting",
		zap.String("source", fetcher.Name()),
		zap.Duration("interval", interval),
		zap.Bool("auto_refresh", autoRefresh),
	)

	monitor := NewMonitor(ctx, MonitorOptions{
		Fetcher:     fetcher,
		Logger:      env.Log,
		Interval:    interval,
		AutoRefresh: autoRefresh,
		Filters:     filters,
		Sort:        sort,
	})
	defer monitor.Close()

	// Populate the store in the background so the UI can show its loading
	// state on the first frame.
	monitor.RefreshAsync()

	return ui.Run(ui.Options{
		Context:   ctx,
		Monitor:   monitor,
		LogPath:   cfg.LogFile,
		ThemeName: userPrefs.Theme,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		Platform:  platformFor(ctx, fetcher),
	})
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.RefreshSeconds = opts.PollEvery
	}
	if s := strings.TrimSpace(opts.Source); s != "" {
		cfg.Source = strings.ToLower(s)
	}
	return cfg, nil
}

func newFetcher(cfg config.Config) (source.Fetcher, error) {
	fetcher, err := source.New(source.Options{
		Kind:       cfg.Source,
		LsofPath:   cfg.LsofPath,
		RemoteAddr: cfg.RemoteAddr,
	})
	if err != nil {
		return nil, fmt.Errorf("init connection source: %w", err)
	}
	return fetcher, nil
}

// initialCriteria merges config defaults with the saved view state; saved
// prefs win field by field.
func initialCriteria(cfg config.Config, p prefs.Prefs) (view.FilterCriteria, view.SortCriteria, error) {
	protocol := firstNonEmpty(p.Filter.Protocol, cfg.Filter.Protocol)
	port := firstNonEmpty(p.Filter.Port, cfg.Filter.Port)
	process := firstNonEmpty(p.Filter.Process, cfg.Filter.Process)
	column := firstNonEmpty(p.Sort.Column, cfg.Sort.Column)
	direction := firstNonEmpty(p.Sort.Direction, cfg.Sort.Direction)

	filters := view.DefaultFilter()
	var err error
	if filters, err = filters.With(view.FilterProtocol, protocol); err != nil {
		return view.FilterCriteria{}, view.SortCriteria{}, err
	}
	filters.PortPrefix = port
	filters.ProcessSubstring = process

	col, err := view.ParseColumn(column)
	if err != nil {
		return view.FilterCriteria{}, view.SortCriteria{}, err
	}
	dir, err := view.ParseDirection(direction)
	if err != nil {
		return view.FilterCriteria{}, view.SortCriteria{}, err
	}
	return filters, view.SortCriteria{Column: col, Direction: dir}, nil
}

// platformFor describes the host the rows come from: the agent's host for a
// remote source, this machine otherwise.
func platformFor(ctx context.Context, f source.Fetcher) source.PlatformInfo {
	if remote, ok := f.(*source.RemoteFetcher); ok {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if info, err := remote.FetchPlatform(pctx); err == nil {
			return info
		}
	}
	return source.Platform()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// loadPrefs reads saved preferences. A broken file is logged and the
// defaults are used.
func loadPrefs(path string, log *zap.Logger) prefs.Prefs {
	p, err := prefs.Load(path)
	if err != nil {
		log.Warn("ignoring unreadable preferences", zap.String("path", path), zap.Error(err))
	}
	return p
}

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is portview's runtime configuration.
type Config struct {
	RefreshSeconds int
	AutoRefresh    bool
	Source         string
	LsofPath       string
	RemoteAddr     string
	ListenAddr     string
	LogFile        string
	LogLevel       string
	Filter         FilterConfig
	Sort           SortConfig
}

// FilterConfig is the initial filter state.
type FilterConfig struct {
	Protocol string `toml:"protocol"`
	Port     string `toml:"port"`
	Process  string `toml:"process"`
}

// SortConfig is the initial sort state. An empty column keeps snapshot order.
type SortConfig struct {
	Column    string `toml:"column"`
	Direction string `toml:"direction"`
}

const (
	defaultConfigPath     = "~/.config/portview/config.toml"
	defaultLogFile        = "~/.local/state/portview/portview.log"
	defaultRefreshSeconds = 5
	defaultSource         = "auto"
	defaultLsofPath       = "lsof"
	defaultAgentAddr      = "127.0.0.1:7488"
	defaultLogLevel       = "info"
	defaultDotenvPath     = ".env"
)

// Environment variables that override the file.
const (
	EnvRefreshSeconds = "PORTVIEW_REFRESH_SECONDS"
	EnvAutoRefresh    = "PORTVIEW_AUTO_REFRESH"
	EnvSource         = "PORTVIEW_SOURCE"
	EnvRemoteAddr     = "PORTVIEW_REMOTE_ADDR"
	EnvLogLevel       = "PORTVIEW_LOG_LEVEL"
	EnvLogFile        = "PORTVIEW_LOG_FILE"
)

var validSources = map[string]bool{"auto": true, "system": true, "lsof": true, "remote": true}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		RefreshSeconds: defaultRefreshSeconds,
		Source:         defaultSource,
		LsofPath:       defaultLsofPath,
		RemoteAddr:     defaultAgentAddr,
		ListenAddr:     defaultAgentAddr,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
		Filter:         FilterConfig{Protocol: "all"},
	}
}

// Load reads the config file at path (default ~/.config/portview/config.toml)
// and then applies PORTVIEW_* overrides from the environment and from an
// optional .env file in the working directory.
func Load(path string) (Config, error) {
	return LoadWithDotenv(path, defaultDotenvPath)
}

// LoadWithDotenv is Load with an explicit .env location. An empty dotenv
// path skips the file.
func LoadWithDotenv(path, dotenv string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := readFile(resolved, &cfg); err != nil {
		return Config{}, err
	}

	if dotenv != "" {
		// godotenv never overrides variables already set in the process.
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, cfg.validate()
}

func readFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		RefreshSeconds int          `toml:"refresh_seconds"`
		AutoRefresh    bool         `toml:"auto_refresh"`
		Source         string       `toml:"source"`
		LsofPath       string       `toml:"lsof_path"`
		RemoteAddr     string       `toml:"remote_addr"`
		ListenAddr     string       `toml:"listen_addr"`
		LogFile        string       `toml:"log_file"`
		LogLevel       string       `toml:"log_level"`
		Filter         FilterConfig `toml:"filter"`
		Sort           SortConfig   `toml:"sort"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if raw.RefreshSeconds >= 1 {
		cfg.RefreshSeconds = raw.RefreshSeconds
	}
	cfg.AutoRefresh = raw.AutoRefresh
	setString(&cfg.Source, strings.ToLower(raw.Source))
	setString(&cfg.LsofPath, raw.LsofPath)
	setString(&cfg.RemoteAddr, raw.RemoteAddr)
	setString(&cfg.ListenAddr, raw.ListenAddr)
	setString(&cfg.LogLevel, strings.ToLower(raw.LogLevel))
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = mustExpand(logFile)
	}
	setString(&cfg.Filter.Protocol, strings.ToLower(raw.Filter.Protocol))
	cfg.Filter.Port = strings.TrimSpace(raw.Filter.Port)
	cfg.Filter.Process = raw.Filter.Process
	cfg.Sort.Column = strings.TrimSpace(raw.Sort.Column)
	cfg.Sort.Direction = strings.ToLower(strings.TrimSpace(raw.Sort.Direction))
	return nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvRefreshSeconds)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRefreshSeconds, err)
		}
		if n >= 1 {
			cfg.RefreshSeconds = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutoRefresh)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAutoRefresh, err)
		}
		cfg.AutoRefresh = b
	}
	setString(&cfg.Source, strings.ToLower(os.Getenv(EnvSource)))
	setString(&cfg.RemoteAddr, os.Getenv(EnvRemoteAddr))
	setString(&cfg.LogLevel, strings.ToLower(os.Getenv(EnvLogLevel)))
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	return nil
}

func (c Config) validate() error {
	if !validSources[c.Source] {
		return fmt.Errorf("unknown source %q (want auto, system, lsof or remote)", c.Source)
	}
	return nil
}

// RefreshInterval returns the polling period.
func (c Config) RefreshInterval() time.Duration {
	if c.RefreshSeconds < 1 {
		return defaultRefreshSeconds * time.Second
	}
	return time.Duration(c.RefreshSeconds) * time.Second
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

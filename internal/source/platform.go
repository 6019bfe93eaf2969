package source

import (
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// PlatformInfo describes the host the connections are read from.
type PlatformInfo struct {
	Platform     string `json:"platform"`
	Supported    bool   `json:"supported"`
	Architecture string `json:"architecture"`
	OS           string `json:"os"`
}

// Platform reports the local platform.
func Platform() PlatformInfo {
	return platformFor(runtime.GOOS, runtime.GOARCH)
}

func platformFor(goos, goarch string) PlatformInfo {
	info := PlatformInfo{Architecture: goarch, OS: goos, Supported: true}
	switch goos {
	case "linux":
		info.Platform = "Linux"
	case "darwin":
		info.Platform = "macOS"
	case "windows":
		info.Platform = "Windows"
	case "freebsd":
		info.Platform = "FreeBSD"
	default:
		info.Platform = "Unknown"
		info.Supported = false
	}
	return info
}

// Source kinds accepted by New.
const (
	KindAuto   = "auto"
	KindSystem = "system"
	KindLsof   = "lsof"
	KindRemote = "remote"
)

// Options select and configure a Fetcher.
type Options struct {
	Kind       string
	LsofPath   string
	RemoteAddr string
}

// New builds the fetcher named by opts.Kind. "auto" uses the system
// enumerator.
func New(opts Options) (Fetcher, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "", KindAuto, KindSystem:
		return NewSystemFetcher(), nil
	case KindLsof:
		return NewLsofFetcher(opts.LsofPath), nil
	case KindRemote:
		return NewRemoteFetcher(opts.RemoteAddr)
	default:
		return nil, errors.Errorf("unknown source %q (want auto, system, lsof or remote)", opts.Kind)
	}
}

// Package config loads portview's configuration.
//
// # Resolution Order
//
//  1. Built-in defaults (Default)
//  2. The TOML file: an explicit path, or ~/.config/portview/config.toml
//  3. PORTVIEW_* environment variables, optionally seeded from a .env file
//     in the working directory (variables already set are never replaced)
//
// A missing config file is not an error. A malformed file, an unparsable
// environment value or an unknown source is.
//
// # Default Values
//
//   - refresh_seconds: 5 (values below 1 fall back to 5)
//   - auto_refresh: false
//   - source: auto (system enumeration)
//   - lsof_path: lsof
//   - remote_addr, listen_addr: 127.0.0.1:7488
//   - log_file: ~/.local/state/portview/portview.log
//   - log_level: info
//
// # TOML Format
//
//	refresh_seconds = 5
//	auto_refresh = false
//	source = "lsof"
//	lsof_path = "/usr/sbin/lsof"
//	remote_addr = "127.0.0.1:7488"
//	listen_addr = "127.0.0.1:7488"
//	log_file = "~/.local/state/portview/portview.log"
//	log_level = "info"
//
//	[filter]
//	protocol = "tcp"
//	port = "44"
//	process = "nginx"
//
//	[sort]
//	column = "local_port"
//	direction = "asc"
//
// Every key is optional. Tilde expansion is applied to log_file.
//
// # Environment
//
//   - PORTVIEW_REFRESH_SECONDS
//   - PORTVIEW_AUTO_REFRESH (strconv.ParseBool syntax)
//   - PORTVIEW_SOURCE
//   - PORTVIEW_REMOTE_ADDR
//   - PORTVIEW_LOG_LEVEL
//   - PORTVIEW_LOG_FILE
//
// Filter and sort values are passed through as text; package view parses
// and validates them when the monitor is built.
package config

// Package ui provides the portview terminal interface.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. It owns no connection data of its own:
// every pollTick it reads the latest snapshot and derived rows from a
// Pipeline (the application monitor) and renders them. User actions are
// forwarded to the Pipeline, which re-derives the view; the next read
// picks up the result.
//
// # Package Structure
//
//   - app.go: Model, Update/View, key dispatch, Run
//   - header.go: statistics line, status line and command bar
//   - table.go: connection table built on bubbles/table
//   - modal.go: text input modal for the port and process filters
//   - logs.go, log_format.go: tail of the JSON log file in a viewport
//   - theme.go, style_helpers.go: System/Dark/Light palettes
//   - keys.go, help.go: key bindings and the help overlay
//
// # Views
//
//   - Connections: the filtered, sorted socket table
//   - Logs: the application's own log file, following by default
//
// # Key Bindings
//
//   - r: Refresh now
//   - a: Toggle auto refresh; +/- change the interval by one second
//   - p: Cycle protocol filter all → tcp → udp
//   - /: Port prefix filter; f: process name filter; c or ESC: clear
//   - 1-8: Sort by column, pressing again flips the direction
//   - l: Toggle log view; Space: pause/follow
//   - T: Cycle theme
//   - h or ?: Help
//   - q or Ctrl+C: Quit
//
// Theme, refresh settings, filters and sort are written to the prefs
// file whenever they change.
package ui

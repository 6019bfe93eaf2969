// Package logging builds the zap logger used across portview: JSON lines
// into a lumberjack-rotated file, plus an optional console sink for
// commands that do not own the terminal.
package logging

// Package logtail reads the tail of the portview log file for the TUI log
// view.
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays
// bounded by the window rather than the file size. A log file that does
// not exist yet is not an error; the view simply shows nothing until the
// first line is written.
//
// ParseEntry decodes the JSON lines written by the rotating file sink into
// an Entry with a timestamp, level, message and the remaining fields
// sorted by key. Lines that are not JSON are left for the caller to show
// verbatim.
package logtail

// Package view derives the filtered, sorted projection of a connection
// snapshot.
//
// Derive applies, in order, the protocol filter, the port-prefix filter
// (local or remote port, decimal prefix), the process-name substring filter
// and finally the sort. It is pure: the same inputs always produce the same
// output and the snapshot is never modified.
//
// Sort columns dispatch through a fixed accessor table. Ports and PIDs
// compare numerically; every other column uses a locale-aware collator.
package view

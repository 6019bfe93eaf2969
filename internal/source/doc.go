// Package source is the boundary between portview and the host's socket
// table.
//
// # Fetchers
//
// A Fetcher returns the complete socket table in one call:
//
//   - SystemFetcher reads it through gopsutil (procfs on Linux, native APIs
//     elsewhere), listing TCP and UDP concurrently.
//   - LsofFetcher runs `lsof -i -n -P` and parses the table.
//   - RemoteFetcher asks a `portview serve` agent over HTTP.
//
// Fetchers never retry. Periodic re-fetching belongs to the scheduler in
// package app.
//
// # Fallback
//
// Fetch wraps a Fetcher call. On success the Result carries the live rows
// tagged OriginLive. On any failure it carries FallbackConnections tagged
// OriginFallback together with a classified FetchError, so callers always
// have rows to show:
//
//	res := source.Fetch(ctx, fetcher, log)
//	if res.Err != nil {
//		status = res.Err.Diagnostic()
//	}
//	store.Update(seq, res)
//
// # Classification
//
// Errors that wrap ErrMissingDependency, or whose text contains a
// missing-command signature such as "lsof command not found", are
// KindMissingDependency. Their Diagnostic names the command so the user
// knows what to install. Everything else is KindTransport.
package source

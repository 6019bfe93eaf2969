// Package agent serves a host's socket table over HTTP so a portview
// running elsewhere can read it with source.RemoteFetcher.
//
// Routes:
//
//	GET /api/connections?protocol=tcp&port=44   JSON []conn.Connection
//	GET /api/platform                           JSON source.PlatformInfo
//	GET /healthz
//	GET /metrics                                Prometheus exposition
//
// A failed fetch answers 503 with {"error": "..."} carrying the original
// error text, so "lsof command not found" reaches the client intact.
package agent

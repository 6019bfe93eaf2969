// Package state holds the connection snapshot shared by the refresh
// scheduler, manual refreshes and the UI.
//
// # Overview
//
// A Store keeps exactly one Snapshot: the rows of the most recent settled
// fetch (live or fallback), the statistics computed from them, and the
// bookkeeping the UI needs to describe where they came from.
//
//	Writers:                         Readers:
//	┌──────────────────┐            ┌──────────────────┐
//	│ scheduler tick    │            │ UI refresh loop   │
//	│ manual refresh    │──Update──→ │ Snapshot()        │
//	│ (source.Fetch)    │  (mutex)   │ view.Derive(...)  │
//	└──────────────────┘            └──────────────────┘
//
// # Update Semantics
//
// Every fetch cycle produces a source.Result, and every Result replaces the
// snapshot wholesale: a failed fetch carries the fallback dataset, so the
// store never goes back to empty after the first cycle.
//
//	store.Update(seq, res)
//	→ snapshot.Connections = res.Connections (cloned)
//	→ snapshot.Statistics  = ComputeStatistics(res.Connections)
//	→ snapshot.Origin      = live | fallback
//	→ snapshot.LastError   = res.Err (nil on success)
//	→ snapshot.Populated   = true
//
// ConsecutiveFailures counts failed cycles in a row and resets to zero on
// the first live result.
//
// # Request Ordering
//
// Fetches may overlap: a manual refresh can start while a scheduled tick is
// still waiting on the source. Each cycle takes a sequence number before it
// starts, and Update applies a result only when its sequence is greater
// than the last applied one. A slow response from an older cycle that
// settles after a newer one is dropped and Update returns false.
//
// # Defensive Copying
//
// Update clones the incoming rows and Snapshot clones them again on the way
// out, so neither the fetcher nor the UI can mutate what the store holds.
//
// # Statistics
//
// ComputeStatistics is a single linear pass over a row slice counting by
// normalised protocol (tcp, udp) and normalised state (listening,
// established). Rows with other values count toward Total only, so
// TCP+UDP <= Total always holds.
//
// # Testing Considerations
//
// The zero Store is ready to use; Snapshot returns a zero Snapshot with
// Populated=false until the first Update.
package state

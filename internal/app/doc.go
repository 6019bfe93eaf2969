// Package app is the composition root of portview and owns the connection
// state pipeline.
//
// # Overview
//
// Each command builds an Env (configuration plus the zap logger), picks a
// source.Fetcher and wraps it in a Monitor:
//
//   - Run: the interactive TUI
//   - List: one fetch rendered as a table
//   - Serve: the HTTP agent
//
// # Components
//
//   - env.go: Env, the explicit replacement for global logger state
//   - monitor.go: Monitor, the pipeline facade used by the UI
//   - scheduler.go: Scheduler, the cancellable refresh timer
//   - app.go, list.go, serve.go: command entry points
//
// # Data Flow
//
//	┌──────────────┐
//	│ Scheduler    │ tick (only when enabled)
//	└──────┬───────┘
//	       │            ┌───────────────┐
//	       ├──────────> │ source.Fetch  │ live rows or fallback + FetchError
//	       │            └──────┬────────┘
//	       │                   v
//	       │            ┌───────────────┐
//	       │            │ state.Store   │ Update(seq, result)
//	       │            └──────┬────────┘
//	       │                   v
//	       │            ┌───────────────┐
//	       └──────────> │ view.Derive   │ cached until snapshot, filter or
//	                    └───────────────┘ sort changes
//
// # Scheduling
//
// The Scheduler is Idle until Start and returns to Idle on Stop; Stop on an
// Idle scheduler does nothing. SetInterval while polling stops the current
// ticker and arms a new one, so the old period never fires again. The
// enabled flag gates ticks: ToggleEnabled flips it and starts or stops
// polling to match. Auto-refresh is off by default.
//
// A tick hands the fetch to its own goroutine. Stopping the scheduler never
// waits on, or cancels, a fetch already in flight. Monitor.Close is the one
// teardown path: it stops the scheduler, cancels scheduled fetches and
// waits for them.
//
// # Overlapping Fetches
//
// A manual refresh can overlap a scheduled one. Every cycle draws a
// sequence number from an atomic counter before it starts and the store
// only applies results newer than the last one applied, so a slow stale
// response cannot overwrite a fresher snapshot.
//
// # Error Handling
//
// Fatal errors (returned from Run, List and Serve):
//   - Invalid config file or environment overrides
//   - Unknown source kind
//   - Log file cannot be created
//
// Everything after startup is recoverable. A failed fetch shows the
// fallback dataset with a one-line diagnostic and the next cycle tries
// again.
//
// # Usage Example
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := app.Run(ctx, app.Options{PollEvery: 5}); err != nil {
//		log.Fatalf("portview failed: %v", err)
//	}
package app

package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/five82/portview/internal/conn"
	"github.com/five82/portview/internal/source"
	"github.com/five82/portview/internal/state"
	"github.com/five82/portview/internal/view"
)

// MonitorOptions configure a Monitor.
type MonitorOptions struct {
	Fetcher     source.Fetcher
	Logger      *zap.Logger
	Interval    time.Duration
	AutoRefresh bool
	Filters     view.FilterCriteria
	Sort        view.SortCriteria
	NewTicker   TickerFactory // nil uses time.NewTicker
}

// Monitor is the connection state pipeline: it owns the snapshot store,
// the filter and sort state, the cached derived view and the refresh
// scheduler. All methods are safe for concurrent use.
type Monitor struct {
	ctx     context.Context
	cancel  context.CancelFunc
	fetcher source.Fetcher
	log     *zap.Logger
	store   *state.Store
	sched   *Scheduler

	seq      atomic.Uint64
	inflight atomic.Int32
	wg       sync.WaitGroup

	mu         sync.Mutex
	filters    view.FilterCriteria
	sort       view.SortCriteria
	derived    []conn.Connection
	derivedSeq uint64
	derivedOK  bool
	closed     bool
}

// NewMonitor builds a Monitor. Fetches started by the scheduler run under
// ctx; Close cancels them.
func NewMonitor(ctx context.Context, opts MonitorOptions) *Monitor {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	filters := opts.Filters
	if filters.Protocol == "" {
		filters.Protocol = view.ProtocolAll
	}
	mctx, cancel := context.WithCancel(ctx)
	m := &Monitor{
		ctx:     mctx,
		cancel:  cancel,
		fetcher: opts.Fetcher,
		log:     log,
		store:   &state.Store{},
		filters: filters,
		sort:    opts.Sort,
	}
	m.sched = NewScheduler(opts.Interval, m.fetchAsync, opts.NewTicker)
	if opts.AutoRefresh {
		m.sched.SetEnabled(true)
	}
	return m
}

// FetchNow runs one fetch cycle and applies its result. It returns the
// settled result even when a newer cycle has already superseded it.
func (m *Monitor) FetchNow(ctx context.Context) source.Result {
	seq := m.seq.Inc()
	m.inflight.Inc()
	defer m.inflight.Dec()

	res := source.Fetch(ctx, m.fetcher, m.log.With(zap.Uint64("seq", seq)))
	if !m.store.Update(seq, res) {
		m.log.Debug("discarded stale fetch result",
			zap.Uint64("seq", seq),
			zap.String("origin", string(res.Origin)),
		)
	}
	return res
}

// fetchAsync is the scheduler callback. The fetch runs on its own goroutine
// so Stop never waits on the source.
func (m *Monitor) fetchAsync() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		m.FetchNow(m.ctx)
	}()
}

// RefreshAsync starts a fetch cycle without waiting for it.
func (m *Monitor) RefreshAsync() {
	m.fetchAsync()
}

// Snapshot returns a copy of the current snapshot.
func (m *Monitor) Snapshot() state.Snapshot {
	return m.store.Snapshot()
}

// Connections returns the raw snapshot rows.
func (m *Monitor) Connections() []conn.Connection {
	return m.store.Snapshot().Connections
}

// Statistics returns the counts for the current snapshot.
func (m *Monitor) Statistics() state.Statistics {
	return m.store.Snapshot().Statistics
}

// Error returns the classified error of the latest cycle, or nil.
func (m *Monitor) Error() *source.FetchError {
	return m.store.Snapshot().LastError
}

// IsLoading reports whether a fetch is running and no snapshot has ever
// been stored. Later refreshes keep showing the previous rows.
func (m *Monitor) IsLoading() bool {
	return m.inflight.Load() > 0 && !m.store.Populated()
}

// Filtered returns the derived view. It is recomputed only when the
// snapshot, the filters or the sort changed since the last call.
func (m *Monitor) Filtered() []conn.Connection {
	snap := m.store.Snapshot()

	m.mu.Lock()
	defer m.mu.Unlock()
	// A reader holding an older snapshot must not replace a newer cache.
	if m.derivedOK && snap.Seq <= m.derivedSeq {
		return conn.Clone(m.derived)
	}
	m.derived = view.Derive(snap.Connections, m.filters, m.sort)
	m.derivedSeq = snap.Seq
	m.derivedOK = true
	return conn.Clone(m.derived)
}

// Filters returns the current filter criteria.
func (m *Monitor) Filters() view.FilterCriteria {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filters
}

// Sort returns the current sort criteria.
func (m *Monitor) Sort() view.SortCriteria {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sort
}

// UpdateFilter sets one filter field by key (protocol, port or process).
func (m *Monitor) UpdateFilter(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := m.filters.With(key, value)
	if err != nil {
		return err
	}
	m.filters = next
	m.derivedOK = false
	return nil
}

// SetFilters replaces all filter criteria.
func (m *Monitor) SetFilters(f view.FilterCriteria) {
	if f.Protocol == "" {
		f.Protocol = view.ProtocolAll
	}
	m.mu.Lock()
	m.filters = f
	m.derivedOK = false
	m.mu.Unlock()
}

// SortBy toggles the sort on col and returns the new criteria.
func (m *Monitor) SortBy(col view.Column) view.SortCriteria {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sort = m.sort.Toggle(col)
	m.derivedOK = false
	return m.sort
}

// SetSort replaces the sort criteria.
func (m *Monitor) SetSort(s view.SortCriteria) {
	m.mu.Lock()
	m.sort = s
	m.derivedOK = false
	m.mu.Unlock()
}

// AutoRefresh reports whether scheduled refreshes are enabled.
func (m *Monitor) AutoRefresh() bool {
	return m.sched.Enabled()
}

// ToggleAutoRefresh flips auto-refresh and returns the new state.
func (m *Monitor) ToggleAutoRefresh() bool {
	enabled := m.sched.ToggleEnabled()
	m.log.Info("auto refresh toggled", zap.Bool("enabled", enabled))
	return enabled
}

// StartAutoRefresh arms the scheduler.
func (m *Monitor) StartAutoRefresh() {
	m.sched.Start()
}

// StopAutoRefresh disarms the scheduler. It is safe to call when idle.
func (m *Monitor) StopAutoRefresh() {
	m.sched.Stop()
}

// Polling reports whether the scheduler has an armed ticker.
func (m *Monitor) Polling() bool {
	return m.sched.Polling()
}

// RefreshInterval returns the scheduler period.
func (m *Monitor) RefreshInterval() time.Duration {
	return m.sched.Interval()
}

// SetRefreshInterval sets the period in whole seconds; values below one
// second are raised to one.
func (m *Monitor) SetRefreshInterval(seconds int) {
	if seconds < 1 {
		seconds = 1
	}
	m.sched.SetInterval(time.Duration(seconds) * time.Second)
	m.log.Info("refresh interval changed", zap.Int("seconds", seconds))
}

// Close stops the scheduler, cancels scheduled fetches and waits for them.
// It is safe to call more than once.
func (m *Monitor) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.sched.Close()
	m.cancel()
	m.wg.Wait()
}

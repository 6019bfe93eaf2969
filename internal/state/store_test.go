package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/five82/portview/internal/conn"
	"github.com/five82/portview/internal/source"
)

func liveResult(conns ...conn.Connection) source.Result {
	return source.Result{Connections: conns, Origin: source.OriginLive, Source: "test", FetchedAt: time.Now()}
}

func failedResult() source.Result {
	return source.Result{
		Connections: source.FallbackConnections(),
		Origin:      source.OriginFallback,
		Source:      "test",
		Err:         source.Classify(errors.New("boom")),
		FetchedAt:   time.Now(),
	}
}

func TestStore_ZeroValueUnpopulated(t *testing.T) {
	var s Store
	snap := s.Snapshot()
	if snap.Populated || s.Populated() {
		t.Fatalf("Populated = true, want false before first update")
	}
	if len(snap.Connections) != 0 {
		t.Fatalf("Connections = %v, want empty", snap.Connections)
	}
}

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	if !s.Update(1, liveResult(conn.Connection{ID: "a", Protocol: "TCP", State: "LISTENING"})) {
		t.Fatalf("Update(1) = false, want true")
	}

	snap := s.Snapshot()
	if !snap.Populated || snap.Origin != source.OriginLive || snap.Seq != 1 {
		t.Fatalf("snapshot = %+v, want populated live seq=1", snap)
	}
	if snap.Statistics.Total != 1 || snap.Statistics.TCP != 1 || snap.Statistics.Listening != 1 {
		t.Fatalf("Statistics = %+v, want total=1 tcp=1 listening=1", snap.Statistics)
	}

	snap.Connections[0].ID = "mutated"
	if got := s.Snapshot().Connections[0].ID; got != "a" {
		t.Fatalf("Snapshot should clone connections; got id %q want a", got)
	}
}

func TestStore_UpdateClonesInput(t *testing.T) {
	var s Store
	rows := []conn.Connection{{ID: "a"}}
	s.Update(1, liveResult(rows...))
	rows[0].ID = "changed"
	if got := s.Snapshot().Connections[0].ID; got != "a" {
		t.Fatalf("stored id = %q, want a", got)
	}
}

func TestStore_FailureReplacesWithFallback(t *testing.T) {
	var s Store
	s.Update(1, liveResult(conn.Connection{ID: "live"}))

	s.Update(2, failedResult())
	snap := s.Snapshot()
	if !snap.IsFallback() {
		t.Fatalf("Origin = %q, want fallback", snap.Origin)
	}
	if len(snap.Connections) != 3 {
		t.Fatalf("len(Connections) = %d, want 3 fallback rows", len(snap.Connections))
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("ConsecutiveFailures = %d, want 1 and online", snap.ConsecutiveFailures)
	}

	s.Update(3, failedResult())
	if !s.Snapshot().IsOffline() {
		t.Fatalf("IsOffline = false after two failures")
	}

	s.Update(4, liveResult())
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.LastError != nil {
		t.Fatalf("live update should reset failures, got %d / %v", snap.ConsecutiveFailures, snap.LastError)
	}
}

func TestStore_SnapshotCopiesError(t *testing.T) {
	var s Store
	s.Update(1, failedResult())
	a := s.Snapshot()
	a.LastError.Command = "mutated"
	if b := s.Snapshot(); b.LastError.Command != "" {
		t.Fatalf("LastError shared between snapshots")
	}
}

func TestStore_DropsStaleResult(t *testing.T) {
	var s Store
	s.Update(5, liveResult(conn.Connection{ID: "newer"}))

	if s.Update(4, liveResult(conn.Connection{ID: "older"})) {
		t.Fatalf("Update(4) after 5 = true, want false")
	}
	if s.Update(5, liveResult(conn.Connection{ID: "dup"})) {
		t.Fatalf("Update(5) twice = true, want false")
	}
	if got := s.Snapshot().Connections[0].ID; got != "newer" {
		t.Fatalf("id = %q, want newer", got)
	}
}

func TestStore_ConcurrentUpdatesKeepHighestSeq(t *testing.T) {
	var s Store
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(seq uint64) {
			defer wg.Done()
			s.Update(seq, liveResult())
			_ = s.Snapshot()
		}(uint64(i))
	}
	wg.Wait()
	if got := s.Snapshot().Seq; got != 50 {
		t.Fatalf("Seq = %d, want 50", got)
	}
}

func TestComputeStatisticsScenario(t *testing.T) {
	rows := []conn.Connection{
		{Protocol: "TCP", State: "LISTENING", LocalPort: 80},
		{Protocol: "UDP", State: "LISTENING", LocalPort: 53},
	}
	got := ComputeStatistics(rows)
	want := Statistics{Total: 2, TCP: 1, UDP: 1, Listening: 2, Established: 0}
	if got != want {
		t.Fatalf("ComputeStatistics = %+v, want %+v", got, want)
	}
}

func TestComputeStatisticsUnknownValues(t *testing.T) {
	rows := []conn.Connection{
		{Protocol: "tcp", State: "established"},
		{Protocol: "SCTP", State: "LISTENING"},
		{Protocol: "", State: "TIME_WAIT"},
	}
	got := ComputeStatistics(rows)
	if got.TCP+got.UDP > got.Total {
		t.Fatalf("tcp+udp = %d exceeds total %d", got.TCP+got.UDP, got.Total)
	}
	want := Statistics{Total: 3, TCP: 1, Listening: 1, Established: 1}
	if got != want {
		t.Fatalf("ComputeStatistics = %+v, want %+v", got, want)
	}
	if empty := ComputeStatistics(nil); empty != (Statistics{}) {
		t.Fatalf("ComputeStatistics(nil) = %+v, want zero", empty)
	}
}

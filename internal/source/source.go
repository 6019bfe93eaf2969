package source

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/five82/portview/internal/conn"
)

// Fetcher enumerates the host's sockets. Implementations return the full
// table on every call and never retry on their own.
type Fetcher interface {
	FetchConnections(ctx context.Context) ([]conn.Connection, error)
	Name() string
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) ([]conn.Connection, error)

// FetchConnections calls f.
func (f FetcherFunc) FetchConnections(ctx context.Context) ([]conn.Connection, error) {
	return f(ctx)
}

// Name implements Fetcher.
func (f FetcherFunc) Name() string { return "func" }

// Origin tags where a snapshot came from.
type Origin string

const (
	OriginLive     Origin = "live"
	OriginFallback Origin = "fallback"
)

// Result is the settled outcome of one fetch cycle. It always carries a
// usable connection list.
type Result struct {
	Connections []conn.Connection
	Origin      Origin
	Source      string
	Err         *FetchError
	FetchedAt   time.Time
	Duration    time.Duration
}

// Fetch runs one fetch against f. Failures are classified and replaced by
// the fallback dataset; the returned Result is never empty-because-failed.
func Fetch(ctx context.Context, f Fetcher, log *zap.Logger) Result {
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()
	res := Result{FetchedAt: start}

	var (
		conns []conn.Connection
		err   error
	)
	if f == nil {
		err = errors.New("no connection source configured")
	} else {
		res.Source = f.Name()
		conns, err = f.FetchConnections(ctx)
	}
	res.Duration = time.Since(start)

	if err != nil {
		res.Err = Classify(err)
		res.Origin = OriginFallback
		res.Connections = FallbackConnections()
		log.Warn("connection fetch failed",
			zap.String("origin", string(res.Origin)),
			zap.String("source", res.Source),
			zap.Stringer("kind", res.Err.Kind),
			zap.Error(err),
			zap.Int("count", len(res.Connections)),
		)
		return res
	}

	conns = normalize(conns)
	conn.AssignIDs(conns)
	res.Origin = OriginLive
	res.Connections = conns
	log.Debug("connection fetch complete",
		zap.String("origin", string(res.Origin)),
		zap.String("source", res.Source),
		zap.Int("count", len(conns)),
		zap.Duration("took", res.Duration),
	)
	return res
}

// normalize copies conns and harmonises protocol and state spellings.
func normalize(conns []conn.Connection) []conn.Connection {
	out := make([]conn.Connection, len(conns))
	for i, c := range conns {
		c.Protocol = strings.ToUpper(strings.TrimSpace(c.Protocol))
		c.State = conn.NormalizeState(c.Protocol, c.State)
		out[i] = c
	}
	return out
}

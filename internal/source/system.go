package source

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	gopsnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sync/errgroup"

	"github.com/five82/portview/internal/conn"
)

// SystemFetcher reads the socket table through gopsutil, which uses
// /proc on Linux and the native APIs elsewhere.
type SystemFetcher struct {
	list func(ctx context.Context, kind string) ([]gopsnet.ConnectionStat, error)
	name func(ctx context.Context, pid int32) (string, error)
}

// NewSystemFetcher returns a fetcher backed by the local OS.
func NewSystemFetcher() *SystemFetcher {
	return &SystemFetcher{
		list: gopsnet.ConnectionsWithContext,
		name: processName,
	}
}

// Name implements Fetcher.
func (s *SystemFetcher) Name() string { return "system" }

// FetchConnections lists TCP and UDP sockets concurrently and resolves the
// owning process names.
func (s *SystemFetcher) FetchConnections(ctx context.Context) ([]conn.Connection, error) {
	var tcp, udp []gopsnet.ConnectionStat
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tcp, err = s.list(gctx, "tcp")
		return errors.Wrap(err, "list tcp sockets")
	})
	g.Go(func() error {
		var err error
		udp, err = s.list(gctx, "udp")
		return errors.Wrap(err, "list udp sockets")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := newNameCache(s.name)
	out := make([]conn.Connection, 0, len(tcp)+len(udp))
	for _, st := range tcp {
		out = append(out, s.convert(ctx, conn.ProtocolTCP, st, names))
	}
	for _, st := range udp {
		out = append(out, s.convert(ctx, conn.ProtocolUDP, st, names))
	}
	return out, nil
}

func (s *SystemFetcher) convert(ctx context.Context, protocol string, st gopsnet.ConnectionStat, names *nameCache) conn.Connection {
	remote := st.Raddr.IP
	if remote == "" {
		remote = conn.WildcardAddress
	}
	return conn.Connection{
		Protocol:      protocol,
		LocalAddress:  st.Laddr.IP,
		LocalPort:     uint16(st.Laddr.Port),
		RemoteAddress: remote,
		RemotePort:    uint16(st.Raddr.Port),
		State:         conn.NormalizeState(protocol, st.Status),
		PID:           st.Pid,
		ProcessName:   names.lookup(ctx, st.Pid),
	}
}

func processName(ctx context.Context, pid int32) (string, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return "", err
	}
	return p.NameWithContext(ctx)
}

// nameCache resolves each pid at most once per fetch. Processes that exit
// between enumeration and lookup resolve to an empty name.
type nameCache struct {
	mu      sync.Mutex
	resolve func(ctx context.Context, pid int32) (string, error)
	names   map[int32]string
}

func newNameCache(resolve func(ctx context.Context, pid int32) (string, error)) *nameCache {
	return &nameCache{resolve: resolve, names: make(map[int32]string)}
}

func (c *nameCache) lookup(ctx context.Context, pid int32) string {
	if pid <= 0 || c.resolve == nil {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if name, ok := c.names[pid]; ok {
		return name
	}
	name, err := c.resolve(ctx, pid)
	if err != nil {
		name = ""
	}
	c.names[pid] = name
	return name
}

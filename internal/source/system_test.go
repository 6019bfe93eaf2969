package source

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	gopsnet "github.com/shirou/gopsutil/v3/net"

	"github.com/five82/portview/internal/conn"
)

func TestSystemFetcherConverts(t *testing.T) {
	var lookups atomic.Int32
	s := &SystemFetcher{
		list: func(_ context.Context, kind string) ([]gopsnet.ConnectionStat, error) {
			switch kind {
			case "tcp":
				return []gopsnet.ConnectionStat{
					{Laddr: gopsnet.Addr{IP: "0.0.0.0", Port: 80}, Status: "LISTEN", Pid: 4},
					{Laddr: gopsnet.Addr{IP: "127.0.0.1", Port: 8080}, Raddr: gopsnet.Addr{IP: "192.168.1.100", Port: 54321}, Status: "ESTABLISHED", Pid: 4},
				}, nil
			case "udp":
				return []gopsnet.ConnectionStat{
					{Laddr: gopsnet.Addr{IP: "127.0.0.1", Port: 53}, Status: "NONE", Pid: 0},
				}, nil
			}
			return nil, nil
		},
		name: func(_ context.Context, pid int32) (string, error) {
			lookups.Add(1)
			return "proc", nil
		},
	}

	conns, err := s.FetchConnections(context.Background())
	require.NoError(t, err)
	require.Len(t, conns, 3)

	require.Equal(t, conn.Connection{
		Protocol: "TCP", LocalAddress: "0.0.0.0", LocalPort: 80, RemoteAddress: "*",
		State: conn.StateListening, PID: 4, ProcessName: "proc",
	}, conns[0])
	require.Equal(t, "192.168.1.100", conns[1].RemoteAddress)
	require.Equal(t, "UDP", conns[2].Protocol)
	require.Equal(t, conn.StateListening, conns[2].State)
	require.Empty(t, conns[2].ProcessName)

	require.EqualValues(t, 1, lookups.Load(), "pid 4 resolved once, pid 0 skipped")
}

func TestSystemFetcherListError(t *testing.T) {
	s := &SystemFetcher{
		list: func(_ context.Context, kind string) ([]gopsnet.ConnectionStat, error) {
			if kind == "udp" {
				return nil, errors.New("permission denied")
			}
			return nil, nil
		},
	}
	_, err := s.FetchConnections(context.Background())
	require.ErrorContains(t, err, "list udp sockets")
}

func TestSystemFetcherNameLookupFailure(t *testing.T) {
	s := &SystemFetcher{
		list: func(_ context.Context, kind string) ([]gopsnet.ConnectionStat, error) {
			if kind == "tcp" {
				return []gopsnet.ConnectionStat{{Laddr: gopsnet.Addr{IP: "::", Port: 22}, Status: "LISTEN", Pid: 99}}, nil
			}
			return nil, nil
		},
		name: func(context.Context, int32) (string, error) {
			return "", errors.New("process exited")
		},
	}
	conns, err := s.FetchConnections(context.Background())
	require.NoError(t, err)
	require.Len(t, conns, 1)
	require.Empty(t, conns[0].ProcessName)
}

package source

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/five82/portview/internal/conn"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    Kind
		command string
	}{
		{"nil", nil, 0, ""},
		{"sentinel", pkgerrors.Wrapf(ErrMissingDependency, "%s command not found", "lsof"), KindMissingDependency, "lsof"},
		{"plain text", errors.New("lsof command not found"), KindMissingDependency, "lsof"},
		{"exec lookup", errors.New(`exec: "lsof": executable file not found in $PATH`), KindMissingDependency, "lsof"},
		{"remote body", errors.New("agent /api/connections returned status 503: lsof command not found"), KindMissingDependency, "lsof"},
		{"transport", errors.New("connection refused"), KindTransport, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if tt.err == nil {
				require.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.Equal(t, tt.kind, got.Kind)
			require.Equal(t, tt.command, got.Command)
			require.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifyKeepsExistingFetchError(t *testing.T) {
	orig := &FetchError{Kind: KindTransport, Err: errors.New("boom")}
	wrapped := pkgerrors.Wrap(orig, "outer")
	require.Same(t, orig, Classify(wrapped))
}

func TestDiagnostic(t *testing.T) {
	missing := Classify(errors.New("lsof command not found"))
	require.Contains(t, missing.Diagnostic(), "lsof is not installed")

	transport := Classify(errors.New("dial tcp: connection refused\nmore detail"))
	require.Equal(t, "connection fetch failed: dial tcp: connection refused; showing sample data", transport.Diagnostic())

	var nilErr *FetchError
	require.Empty(t, nilErr.Diagnostic())
	require.False(t, nilErr.IsMissingDependency())
}

func TestFetchMissingDependencyFallsBack(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	f := FetcherFunc(func(context.Context) ([]conn.Connection, error) {
		return nil, errors.New("lsof command not found")
	})

	res := Fetch(context.Background(), f, zap.New(core))

	require.Equal(t, OriginFallback, res.Origin)
	require.NotNil(t, res.Err)
	require.True(t, res.Err.IsMissingDependency())
	require.Len(t, res.Connections, 3)
	require.Equal(t, "fallback-1", res.Connections[0].ID)
	require.Equal(t, 1, logs.FilterMessage("connection fetch failed").Len())
}

func TestFetchTransportFallsBack(t *testing.T) {
	f := FetcherFunc(func(context.Context) ([]conn.Connection, error) {
		return nil, errors.New("backend unreachable")
	})
	res := Fetch(context.Background(), f, nil)
	require.Equal(t, OriginFallback, res.Origin)
	require.Equal(t, KindTransport, res.Err.Kind)
	require.Len(t, res.Connections, 3)
}

func TestFetchNilFetcher(t *testing.T) {
	res := Fetch(context.Background(), nil, nil)
	require.Equal(t, OriginFallback, res.Origin)
	require.NotNil(t, res.Err)
}

func TestFetchLiveNormalizesAndAssignsIDs(t *testing.T) {
	f := FetcherFunc(func(context.Context) ([]conn.Connection, error) {
		return []conn.Connection{
			{Protocol: "tcp", LocalAddress: "0.0.0.0", LocalPort: 22, RemoteAddress: "*", State: "LISTEN", PID: 10, ProcessName: "sshd"},
			{Protocol: "udp", LocalAddress: "0.0.0.0", LocalPort: 5353, RemoteAddress: "*", PID: 11, ProcessName: "mdns"},
		}, nil
	})

	res := Fetch(context.Background(), f, nil)

	require.Equal(t, OriginLive, res.Origin)
	require.Nil(t, res.Err)
	require.Equal(t, "func", res.Source)
	require.Len(t, res.Connections, 2)
	require.Equal(t, conn.ProtocolTCP, res.Connections[0].Protocol)
	require.Equal(t, conn.StateListening, res.Connections[0].State)
	require.Equal(t, conn.StateListening, res.Connections[1].State)
	require.NotEmpty(t, res.Connections[0].ID)
	require.NotEqual(t, res.Connections[0].ID, res.Connections[1].ID)
}

func TestFetchLiveEmptyIsNotFailure(t *testing.T) {
	f := FetcherFunc(func(context.Context) ([]conn.Connection, error) {
		return []conn.Connection{}, nil
	})
	res := Fetch(context.Background(), f, nil)
	require.Equal(t, OriginLive, res.Origin)
	require.Nil(t, res.Err)
	require.Empty(t, res.Connections)
}

func TestFallbackConnectionsIsACopy(t *testing.T) {
	a := FallbackConnections()
	a[0].ProcessName = "mutated"
	b := FallbackConnections()
	require.Equal(t, "chrome.exe", b[0].ProcessName)
}

func TestNew(t *testing.T) {
	f, err := New(Options{})
	require.NoError(t, err)
	require.Equal(t, "system", f.Name())

	f, err = New(Options{Kind: "LSOF", LsofPath: "/usr/sbin/lsof"})
	require.NoError(t, err)
	require.Equal(t, "lsof", f.Name())

	f, err = New(Options{Kind: "remote", RemoteAddr: "10.0.0.2:7488"})
	require.NoError(t, err)
	require.Equal(t, "remote", f.Name())

	_, err = New(Options{Kind: "netstat"})
	require.Error(t, err)
}

func TestPlatformFor(t *testing.T) {
	info := platformFor("darwin", "arm64")
	require.Equal(t, PlatformInfo{Platform: "macOS", Supported: true, Architecture: "arm64", OS: "darwin"}, info)

	info = platformFor("plan9", "386")
	require.False(t, info.Supported)
	require.Equal(t, "Unknown", info.Platform)
}

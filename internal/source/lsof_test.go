package source

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/five82/portview/internal/conn"
)

const lsofSample = `COMMAND     PID   USER   FD   TYPE             DEVICE SIZE/OFF NODE NAME
launchd       1   root    7u  IPv6 0x1111111111111111      0t0  TCP *:22 (LISTEN)
nginx       812   root    6u  IPv4 0x2222222222222222      0t0  TCP 127.0.0.1:8080->192.168.1.100:54321 (ESTABLISHED)
mDNSRespo   301 _mdns    8u  IPv4 0x3333333333333333      0t0  UDP *:5353
Google\x20  900   me     40u  IPv6 0x4444444444444444      0t0  TCP [::1]:49152->[::1]:443 (CLOSE_WAIT)
Finder      77    me     3u   unix 0x5555555555555555      0t0      ->0x6666
`

func TestParseLsof(t *testing.T) {
	conns := ParseLsof([]byte(lsofSample))
	require.Len(t, conns, 4)

	require.Equal(t, conn.Connection{
		Protocol: "TCP", LocalAddress: "*", LocalPort: 22, RemoteAddress: "*",
		State: conn.StateListening, PID: 1, ProcessName: "launchd",
	}, conns[0])

	require.Equal(t, "192.168.1.100", conns[1].RemoteAddress)
	require.Equal(t, uint16(54321), conns[1].RemotePort)
	require.Equal(t, conn.StateEstablished, conns[1].State)

	require.Equal(t, "UDP", conns[2].Protocol)
	require.Equal(t, uint16(5353), conns[2].LocalPort)
	require.Equal(t, conn.StateListening, conns[2].State)

	require.Equal(t, "Google ", conns[3].ProcessName)
	require.Equal(t, "::1", conns[3].LocalAddress)
	require.Equal(t, uint16(443), conns[3].RemotePort)
	require.Equal(t, "CLOSE_WAIT", conns[3].State)
}

func TestParseLsofEmpty(t *testing.T) {
	require.Empty(t, ParseLsof(nil))
	require.Empty(t, ParseLsof([]byte("COMMAND PID USER FD TYPE DEVICE SIZE/OFF NODE NAME\n")))
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		host string
		port uint16
		ok   bool
	}{
		{"*:*", "*", 0, true},
		{"10.0.0.1:443", "10.0.0.1", 443, true},
		{"[fe80::1]:53", "fe80::1", 53, true},
		{"nohost", "", 0, false},
		{"1.2.3.4:99999", "", 0, false},
		{"[::1", "", 0, false},
	}
	for _, tt := range tests {
		host, port, ok := parseEndpoint(tt.in)
		if host != tt.host || port != tt.port || ok != tt.ok {
			t.Fatalf("parseEndpoint(%q) = (%q, %d, %v), want (%q, %d, %v)", tt.in, host, port, ok, tt.host, tt.port, tt.ok)
		}
	}
}

func TestLsofFetcherMissingBinary(t *testing.T) {
	l := NewLsofFetcher("/nonexistent/bin/lsof")
	l.run = func(context.Context, string, ...string) ([]byte, error) {
		return nil, exec.ErrNotFound
	}

	_, err := l.FetchConnections(context.Background())
	require.ErrorIs(t, err, ErrMissingDependency)

	fe := Classify(err)
	require.True(t, fe.IsMissingDependency())
	require.Equal(t, "lsof", fe.Command)
}

func TestLsofFetcherParsesOutput(t *testing.T) {
	var gotArgs []string
	l := NewLsofFetcher("")
	l.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		require.Equal(t, "lsof", name)
		gotArgs = args
		return []byte(lsofSample), nil
	}

	conns, err := l.FetchConnections(context.Background())
	require.NoError(t, err)
	require.Len(t, conns, 4)
	require.Equal(t, []string{"-i", "-n", "-P"}, gotArgs)
}

// exitStatusOne returns a real *exec.ExitError with exit code 1.
func exitStatusOne(t *testing.T, stderr string) *exec.ExitError {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	var exitErr *exec.ExitError
	require.ErrorAs(t, exec.Command("sh", "-c", "exit 1").Run(), &exitErr)
	require.Equal(t, 1, exitErr.ExitCode())
	exitErr.Stderr = []byte(stderr)
	return exitErr
}

func TestLsofFetcherExitOneKeepsPartialOutput(t *testing.T) {
	exitErr := exitStatusOne(t, "lsof: WARNING: can't stat() fuse file system\n")
	l := NewLsofFetcher("")
	l.run = func(context.Context, string, ...string) ([]byte, error) {
		return []byte(lsofSample), exitErr
	}

	conns, err := l.FetchConnections(context.Background())
	require.NoError(t, err)
	require.Len(t, conns, 4)
}

func TestLsofFetcherExitOneWithoutOutputIsEmptyTable(t *testing.T) {
	exitErr := exitStatusOne(t, "")
	l := NewLsofFetcher("")
	l.run = func(context.Context, string, ...string) ([]byte, error) {
		return nil, exitErr
	}

	conns, err := l.FetchConnections(context.Background())
	require.NoError(t, err)
	require.NotNil(t, conns)
	require.Empty(t, conns)
}

func TestLsofFetcherExitOneWithStderrFails(t *testing.T) {
	exitErr := exitStatusOne(t, "lsof: permission denied\n")
	l := NewLsofFetcher("")
	l.run = func(context.Context, string, ...string) ([]byte, error) {
		return nil, exitErr
	}

	_, err := l.FetchConnections(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "lsof failed: lsof: permission denied")
	require.False(t, Classify(err).IsMissingDependency())
}

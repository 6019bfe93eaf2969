package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/five82/portview/internal/conn"
)

func TestParseBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "http://127.0.0.1:7488"},
		{"10.0.0.2:7488", "http://10.0.0.2:7488"},
		{"https://agent.example:9000/ignored?x=1", "https://agent.example:9000"},
	}
	for _, tt := range tests {
		u, err := parseBaseURL(tt.in)
		require.NoError(t, err)
		require.Equal(t, tt.want, u.String())
	}
}

func TestRemoteFetcherConnections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/connections", r.URL.Path)
		require.Equal(t, "portview/0.1", r.Header.Get("User-Agent"))
		require.Equal(t, "tcp", r.URL.Query().Get("protocol"))
		require.Equal(t, "80", r.URL.Query().Get("port"))
		_ = json.NewEncoder(w).Encode([]conn.Connection{
			{Protocol: "TCP", LocalAddress: "0.0.0.0", LocalPort: 80, RemoteAddress: "*", State: "LISTENING", PID: 4, ProcessName: "System"},
		})
	}))
	defer srv.Close()

	r, err := NewRemoteFetcher(srv.URL)
	require.NoError(t, err)

	conns, err := r.FetchFiltered(context.Background(), RemoteQuery{Protocol: "TCP", PortPrefix: "80"})
	require.NoError(t, err)
	require.Len(t, conns, 1)
	require.Equal(t, "System", conns[0].ProcessName)
}

func TestRemoteFetcherAllProtocolOmitsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte("null"))
	}))
	defer srv.Close()

	r, err := NewRemoteFetcher(srv.URL)
	require.NoError(t, err)
	conns, err := r.FetchFiltered(context.Background(), RemoteQuery{Protocol: "all"})
	require.NoError(t, err)
	require.NotNil(t, conns)
	require.Empty(t, conns)
}

func TestRemoteFetcherMissingDependencyFromAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "lsof command not found"})
	}))
	defer srv.Close()

	r, err := NewRemoteFetcher(srv.URL)
	require.NoError(t, err)

	res := Fetch(context.Background(), r, nil)
	require.Equal(t, OriginFallback, res.Origin)
	require.True(t, res.Err.IsMissingDependency())
	require.Equal(t, "lsof", res.Err.Command)
}

func TestRemoteFetcherPlatform(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/platform", r.URL.Path)
		_ = json.NewEncoder(w).Encode(PlatformInfo{Platform: "Linux", Supported: true, Architecture: "amd64", OS: "linux"})
	}))
	defer srv.Close()

	r, err := NewRemoteFetcher(srv.URL)
	require.NoError(t, err)
	info, err := r.FetchPlatform(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Linux", info.Platform)
}

func TestRemoteFetcherUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	r, err := NewRemoteFetcher(addr)
	require.NoError(t, err)
	res := Fetch(context.Background(), r, nil)
	require.Equal(t, OriginFallback, res.Origin)
	require.Equal(t, KindTransport, res.Err.Kind)
}

package source

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/five82/portview/internal/conn"
)

const (
	defaultRemoteAddr = "127.0.0.1:7488"
	defaultUserAgent  = "portview/0.1"
	requestTimeout    = 5 * time.Second
	maxErrorBody      = 4 << 10
)

// RemoteFetcher talks to a portview agent over HTTP.
type RemoteFetcher struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// Ensure RemoteFetcher implements Fetcher at compile time.
var _ Fetcher = (*RemoteFetcher)(nil)

// RemoteQuery narrows the agent-side listing.
type RemoteQuery struct {
	Protocol   string
	PortPrefix string
}

// ErrorResponse is the body an agent sends with non-2xx statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewRemoteFetcher builds a fetcher for the agent at addr (host:port or URL).
func NewRemoteFetcher(addr string) (*RemoteFetcher, error) {
	base, err := parseBaseURL(addr)
	if err != nil {
		return nil, err
	}
	return &RemoteFetcher{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// Name implements Fetcher.
func (r *RemoteFetcher) Name() string { return "remote" }

// FetchConnections retrieves the agent's full socket table.
func (r *RemoteFetcher) FetchConnections(ctx context.Context) ([]conn.Connection, error) {
	return r.FetchFiltered(ctx, RemoteQuery{})
}

// FetchFiltered retrieves the agent's socket table with the protocol and
// port-prefix predicates applied on the agent.
func (r *RemoteFetcher) FetchFiltered(ctx context.Context, q RemoteQuery) ([]conn.Connection, error) {
	if r == nil {
		return nil, errors.New("remote fetcher is nil")
	}
	values := url.Values{}
	if p := strings.TrimSpace(q.Protocol); p != "" && !strings.EqualFold(p, "all") {
		values.Set("protocol", strings.ToLower(p))
	}
	if port := strings.TrimSpace(q.PortPrefix); port != "" {
		values.Set("port", port)
	}
	rel := &url.URL{Path: "/api/connections", RawQuery: values.Encode()}
	var payload []conn.Connection
	if err := r.doURL(ctx, http.MethodGet, rel, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = []conn.Connection{}
	}
	return payload, nil
}

// FetchPlatform retrieves the agent host's platform description.
func (r *RemoteFetcher) FetchPlatform(ctx context.Context) (PlatformInfo, error) {
	if r == nil {
		return PlatformInfo{}, errors.New("remote fetcher is nil")
	}
	var payload PlatformInfo
	if err := r.doURL(ctx, http.MethodGet, &url.URL{Path: "/api/platform"}, &payload); err != nil {
		return PlatformInfo{}, err
	}
	return payload, nil
}

func (r *RemoteFetcher) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := r.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return errors.Errorf("agent %s returned status %d%s", rel.Path, resp.StatusCode, errorDetail(resp.Body))
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

// errorDetail extracts the agent's error message so the classifier can see
// it, e.g. "lsof command not found".
func errorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload ErrorResponse
	if json.Unmarshal(raw, &payload) == nil && strings.TrimSpace(payload.Error) != "" {
		return ": " + strings.TrimSpace(payload.Error)
	}
	return ": " + firstLine(string(raw))
}

func parseBaseURL(addr string) (*url.URL, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		trimmed = defaultRemoteAddr
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, errors.Wrapf(err, "parse remote address %q", addr)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

package source

import (
	"bufio"
	"bytes"
	"context"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/five82/portview/internal/conn"
)

const defaultLsofPath = "lsof"

// LsofFetcher shells out to lsof(8). It works on macOS and on Linux hosts
// where gopsutil cannot see other users' sockets.
type LsofFetcher struct {
	path string
	run  func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewLsofFetcher returns a fetcher that runs the lsof binary at path
// (looked up on $PATH when relative).
func NewLsofFetcher(path string) *LsofFetcher {
	if strings.TrimSpace(path) == "" {
		path = defaultLsofPath
	}
	return &LsofFetcher{path: path, run: runCommand}
}

// Name implements Fetcher.
func (l *LsofFetcher) Name() string { return "lsof" }

// FetchConnections runs `lsof -i -n -P` and parses its table.
func (l *LsofFetcher) FetchConnections(ctx context.Context) ([]conn.Connection, error) {
	out, err := l.run(ctx, l.path, "-i", "-n", "-P")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrMissingDependency, "%s command not found", filepath.Base(l.path))
		}
		var exitErr *exec.ExitError
		// lsof exits 1 when some files could not be inspected or nothing
		// matched; whatever it printed is still valid.
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			if len(bytes.TrimSpace(out)) > 0 {
				return ParseLsof(out), nil
			}
			if len(bytes.TrimSpace(exitErr.Stderr)) == 0 {
				return []conn.Connection{}, nil
			}
		}
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, errors.Wrapf(err, "lsof failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, errors.Wrap(err, "run lsof")
	}
	return ParseLsof(out), nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// ParseLsof parses the default lsof table output:
//
//	COMMAND  PID USER FD TYPE DEVICE SIZE/OFF NODE NAME
//	nginx    812 root 6u IPv4 0x1234 0t0      TCP  *:80 (LISTEN)
//
// Rows that are not TCP or UDP sockets, or whose address cannot be parsed,
// are skipped.
func ParseLsof(out []byte) []conn.Connection {
	var conns []conn.Connection
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			if strings.HasPrefix(strings.TrimSpace(line), "COMMAND") {
				continue
			}
		}
		if c, ok := parseLsofLine(line); ok {
			conns = append(conns, c)
		}
	}
	return conns
}

func parseLsofLine(line string) (conn.Connection, bool) {
	fields := strings.Fields(line)
	if len(fields) < 9 {
		return conn.Connection{}, false
	}
	protocol := strings.ToUpper(fields[7])
	if protocol != conn.ProtocolTCP && protocol != conn.ProtocolUDP {
		return conn.Connection{}, false
	}
	pid, err := strconv.ParseInt(fields[1], 10, 32)
	if err != nil {
		return conn.Connection{}, false
	}

	name := fields[8]
	state := ""
	if len(fields) > 9 {
		state = strings.Trim(fields[9], "()")
	}

	c := conn.Connection{
		Protocol:      protocol,
		PID:           int32(pid),
		ProcessName:   unescapeLsof(fields[0]),
		RemoteAddress: conn.WildcardAddress,
	}
	local, remote, hasRemote := strings.Cut(name, "->")
	var ok bool
	c.LocalAddress, c.LocalPort, ok = parseEndpoint(local)
	if !ok {
		return conn.Connection{}, false
	}
	if hasRemote {
		c.RemoteAddress, c.RemotePort, ok = parseEndpoint(remote)
		if !ok {
			return conn.Connection{}, false
		}
	}
	c.State = conn.NormalizeState(protocol, state)
	return c, true
}

// parseEndpoint splits "host:port", "[v6]:port" or "*:*" forms. A "*" port
// maps to 0.
func parseEndpoint(s string) (string, uint16, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", 0, false
	}
	var host, port string
	if strings.HasPrefix(s, "[") {
		end := strings.Index(s, "]:")
		if end < 0 {
			return "", 0, false
		}
		host, port = s[1:end], s[end+2:]
	} else {
		idx := strings.LastIndex(s, ":")
		if idx < 0 {
			return "", 0, false
		}
		host, port = s[:idx], s[idx+1:]
	}
	if port == "*" {
		return host, 0, true
	}
	n, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return "", 0, false
	}
	return host, uint16(n), true
}

// unescapeLsof reverses lsof's \xNN escaping of command names.
func unescapeLsof(s string) string {
	if !strings.Contains(s, `\x`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) && s[i+1] == 'x' {
			if v, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

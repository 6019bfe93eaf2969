package view

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/five82/portview/internal/conn"
)

// Derive filters and sorts snapshot. It never modifies snapshot and always
// returns a fresh slice, empty rather than nil when nothing matches.
func Derive(snapshot []conn.Connection, f FilterCriteria, s SortCriteria) []conn.Connection {
	out := make([]conn.Connection, 0, len(snapshot))
	match := matcher(f)
	for _, c := range snapshot {
		if match(c) {
			out = append(out, c)
		}
	}
	Sort(out, s)
	return out
}

// Filter applies only the predicates of f.
func Filter(snapshot []conn.Connection, f FilterCriteria) []conn.Connection {
	return Derive(snapshot, f, SortCriteria{})
}

func matcher(f FilterCriteria) func(conn.Connection) bool {
	protocol := f.protocol()
	prefix := strings.TrimSpace(f.PortPrefix)
	process := strings.ToLower(f.ProcessSubstring)
	return func(c conn.Connection) bool {
		if protocol != ProtocolAll && c.NormalizedProtocol() != protocol {
			return false
		}
		if prefix != "" && !portHasPrefix(c.LocalPort, prefix) && !portHasPrefix(c.RemotePort, prefix) {
			return false
		}
		if process != "" && !strings.Contains(strings.ToLower(c.ProcessName), process) {
			return false
		}
		return true
	}
}

func portHasPrefix(port uint16, prefix string) bool {
	return strings.HasPrefix(strconv.FormatUint(uint64(port), 10), prefix)
}

// Sort orders rows in place by s. Ties keep their input order.
func Sort(rows []conn.Connection, s SortCriteria) {
	a, ok := accessors[s.Column]
	if !ok || len(rows) < 2 {
		return
	}
	var compare func(x, y conn.Connection) int
	if a.numeric() {
		compare = func(x, y conn.Connection) int { return cmp.Compare(a.num(x), a.num(y)) }
	} else {
		// Collators keep internal buffers; one per call keeps Sort safe for
		// concurrent use.
		col := collate.New(language.Und)
		compare = func(x, y conn.Connection) int { return col.CompareString(a.str(x), a.str(y)) }
	}
	if s.Direction == Desc {
		asc := compare
		compare = func(x, y conn.Connection) int { return -asc(x, y) }
	}
	slices.SortStableFunc(rows, compare)
}

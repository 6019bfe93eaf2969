package view

import (
	"fmt"
	"strings"
)

// ProtocolAll disables the protocol filter.
const ProtocolAll = "all"

// Filter keys accepted by FilterCriteria.With.
const (
	FilterProtocol = "protocol"
	FilterPort     = "port"
	FilterProcess  = "process"
)

// FilterCriteria narrows a snapshot. The zero value behaves like
// DefaultFilter.
type FilterCriteria struct {
	Protocol         string // all, tcp or udp
	PortPrefix       string
	ProcessSubstring string
}

// DefaultFilter returns {all, "", ""}.
func DefaultFilter() FilterCriteria {
	return FilterCriteria{Protocol: ProtocolAll}
}

// With returns a copy of f with the field named by key set to value.
func (f FilterCriteria) With(key, value string) (FilterCriteria, error) {
	switch normalizeKey(key) {
	case FilterProtocol:
		p, err := ParseProtocol(value)
		if err != nil {
			return f, err
		}
		f.Protocol = p
	case FilterPort, "portprefix":
		f.PortPrefix = value
	case FilterProcess, "processsubstring", "processname":
		f.ProcessSubstring = value
	default:
		return f, fmt.Errorf("unknown filter %q", key)
	}
	return f, nil
}

// Active reports whether any predicate would drop rows.
func (f FilterCriteria) Active() bool {
	return f.protocol() != ProtocolAll ||
		strings.TrimSpace(f.PortPrefix) != "" ||
		f.ProcessSubstring != ""
}

func (f FilterCriteria) protocol() string {
	p := strings.ToLower(strings.TrimSpace(f.Protocol))
	if p == "" {
		return ProtocolAll
	}
	return p
}

// ParseProtocol validates a protocol filter value.
func ParseProtocol(s string) (string, error) {
	switch p := strings.ToLower(strings.TrimSpace(s)); p {
	case "", ProtocolAll:
		return ProtocolAll, nil
	case "tcp", "udp":
		return p, nil
	default:
		return "", fmt.Errorf("unknown protocol %q (want all, tcp or udp)", s)
	}
}

// NextProtocol cycles all → tcp → udp → all.
func NextProtocol(current string) string {
	switch strings.ToLower(strings.TrimSpace(current)) {
	case ProtocolAll, "":
		return "tcp"
	case "tcp":
		return "udp"
	default:
		return ProtocolAll
	}
}

// Direction is a sort order.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// ParseDirection accepts asc/ascending and desc/descending.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending":
		return Asc, nil
	case "desc", "descending":
		return Desc, nil
	default:
		return Asc, fmt.Errorf("unknown sort direction %q", s)
	}
}

// SortCriteria orders a derived view. ColumnNone keeps snapshot order.
type SortCriteria struct {
	Column    Column
	Direction Direction
}

// Toggle selects col: the same column flips direction, a new column starts
// ascending.
func (s SortCriteria) Toggle(col Column) SortCriteria {
	if s.Column == col {
		if s.Direction == Asc {
			s.Direction = Desc
		} else {
			s.Direction = Asc
		}
		return s
	}
	return SortCriteria{Column: col, Direction: Asc}
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer("_", "", "-", "", ".", "", " ", "").Replace(key)
}

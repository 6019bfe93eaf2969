package conn

import (
	"strconv"
	"strings"
)

// Protocol names as reported by the enumerators.
const (
	ProtocolTCP = "TCP"
	ProtocolUDP = "UDP"
)

// Well-known socket states. Sources report other TCP states verbatim.
const (
	StateListening   = "LISTENING"
	StateEstablished = "ESTABLISHED"
)

// WildcardAddress marks an address that does not apply, such as the remote
// side of a listening socket.
const WildcardAddress = "*"

// Connection is one observed socket entry.
type Connection struct {
	ID            string `json:"id,omitempty"`
	Protocol      string `json:"protocol"`
	LocalAddress  string `json:"local_address"`
	LocalPort     uint16 `json:"local_port"`
	RemoteAddress string `json:"remote_address"`
	RemotePort    uint16 `json:"remote_port"`
	State         string `json:"state"`
	PID           int32  `json:"pid"`
	ProcessName   string `json:"process_name"`
}

// NormalizedProtocol returns the lowercase protocol name ("tcp", "udp" or
// whatever the source reported).
func (c Connection) NormalizedProtocol() string {
	return strings.ToLower(strings.TrimSpace(c.Protocol))
}

// NormalizedState returns the lowercase socket state.
func (c Connection) NormalizedState() string {
	return strings.ToLower(strings.TrimSpace(c.State))
}

// IsTCP reports whether the connection uses TCP.
func (c Connection) IsTCP() bool { return c.NormalizedProtocol() == "tcp" }

// IsUDP reports whether the connection uses UDP.
func (c Connection) IsUDP() bool { return c.NormalizedProtocol() == "udp" }

// LocalEndpoint formats the local side as host:port.
func (c Connection) LocalEndpoint() string {
	return Endpoint(c.LocalAddress, c.LocalPort)
}

// RemoteEndpoint formats the remote side as host:port, or the wildcard when
// there is no peer.
func (c Connection) RemoteEndpoint() string {
	return Endpoint(c.RemoteAddress, c.RemotePort)
}

// Endpoint joins an address and port for display. IPv6 literals are
// bracketed; a zero port is rendered as "*".
func Endpoint(addr string, port uint16) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = WildcardAddress
	}
	p := WildcardAddress
	if port != 0 {
		p = strconv.Itoa(int(port))
	}
	if addr == WildcardAddress && port == 0 {
		return WildcardAddress
	}
	if strings.Contains(addr, ":") {
		return "[" + addr + "]:" + p
	}
	return addr + ":" + p
}

// NormalizeState maps the state spellings of the different enumerators to
// one vocabulary. LISTEN becomes LISTENING; UDP sockets without a state are
// reported as LISTENING the same way the OS tools do.
func NormalizeState(protocol, state string) string {
	s := strings.ToUpper(strings.TrimSpace(state))
	switch s {
	case "LISTEN":
		return StateListening
	case "", "NONE":
		if strings.EqualFold(strings.TrimSpace(protocol), ProtocolUDP) {
			return StateListening
		}
		return s
	case "FIN_WAIT_1":
		return "FIN_WAIT1"
	case "FIN_WAIT_2":
		return "FIN_WAIT2"
	case "SYN_RECV":
		return "SYN_RCVD"
	}
	return s
}

// Clone returns an independent copy of conns. A nil or empty input yields nil.
func Clone(conns []Connection) []Connection {
	if len(conns) == 0 {
		return nil
	}
	dup := make([]Connection, len(conns))
	copy(dup, conns)
	return dup
}

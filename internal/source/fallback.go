package source

import "github.com/five82/portview/internal/conn"

// fallbackConnections covers the common shapes: an established outbound
// connection on loopback, a wildcard-bound TCP listener and a UDP listener.
var fallbackConnections = []conn.Connection{
	{
		ID:            "fallback-1",
		Protocol:      conn.ProtocolTCP,
		LocalAddress:  "127.0.0.1",
		LocalPort:     8080,
		RemoteAddress: "192.168.1.100",
		RemotePort:    54321,
		State:         conn.StateEstablished,
		PID:           1234,
		ProcessName:   "chrome.exe",
	},
	{
		ID:            "fallback-2",
		Protocol:      conn.ProtocolTCP,
		LocalAddress:  "0.0.0.0",
		LocalPort:     80,
		RemoteAddress: "",
		RemotePort:    0,
		State:         conn.StateListening,
		PID:           4,
		ProcessName:   "System",
	},
	{
		ID:            "fallback-3",
		Protocol:      conn.ProtocolUDP,
		LocalAddress:  "127.0.0.1",
		LocalPort:     53,
		RemoteAddress: "",
		RemotePort:    0,
		State:         conn.StateListening,
		PID:           2048,
		ProcessName:   "dns.exe",
	},
}

// FallbackConnections returns a fresh copy of the synthetic dataset used
// when the live source is unavailable.
func FallbackConnections() []conn.Connection {
	return conn.Clone(fallbackConnections)
}

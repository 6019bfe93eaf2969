package conn

import (
	"strings"
	"testing"
)

func TestNormalizeState(t *testing.T) {
	cases := []struct {
		protocol, state, want string
	}{
		{"TCP", "LISTEN", StateListening},
		{"tcp", " established ", StateEstablished},
		{"UDP", "", StateListening},
		{"udp", "NONE", StateListening},
		{"TCP", "", ""},
		{"TCP", "FIN_WAIT_1", "FIN_WAIT1"},
		{"TCP", "SYN_RECV", "SYN_RCVD"},
		{"TCP", "time_wait", "TIME_WAIT"},
	}
	for _, tc := range cases {
		if got := NormalizeState(tc.protocol, tc.state); got != tc.want {
			t.Fatalf("NormalizeState(%q, %q) = %q, want %q", tc.protocol, tc.state, got, tc.want)
		}
	}
}

func TestEndpoint(t *testing.T) {
	cases := []struct {
		addr string
		port uint16
		want string
	}{
		{"127.0.0.1", 8080, "127.0.0.1:8080"},
		{"::1", 53, "[::1]:53"},
		{"", 0, "*"},
		{"*", 0, "*"},
		{"0.0.0.0", 0, "0.0.0.0:*"},
	}
	for _, tc := range cases {
		if got := Endpoint(tc.addr, tc.port); got != tc.want {
			t.Fatalf("Endpoint(%q, %d) = %q, want %q", tc.addr, tc.port, got, tc.want)
		}
	}
}

func TestProtocolHelpers(t *testing.T) {
	c := Connection{Protocol: " Tcp "}
	if !c.IsTCP() || c.IsUDP() {
		t.Fatalf("IsTCP/IsUDP = %v/%v for %q", c.IsTCP(), c.IsUDP(), c.Protocol)
	}
}

func TestAssignIDs_StableAndUnique(t *testing.T) {
	rows := []Connection{
		{Protocol: "TCP", LocalAddress: "127.0.0.1", LocalPort: 80, PID: 1},
		{Protocol: "TCP", LocalAddress: "127.0.0.1", LocalPort: 80, PID: 1},
		{Protocol: "UDP", LocalAddress: "127.0.0.1", LocalPort: 53, PID: 2},
		{ID: "keep-me", Protocol: "TCP"},
	}
	AssignIDs(rows)

	seen := map[string]bool{}
	for _, r := range rows {
		if r.ID == "" {
			t.Fatalf("row %+v has no ID", r)
		}
		if seen[r.ID] {
			t.Fatalf("duplicate ID %q", r.ID)
		}
		seen[r.ID] = true
	}
	if rows[3].ID != "keep-me" {
		t.Fatalf("existing ID overwritten: %q", rows[3].ID)
	}
	if !strings.HasPrefix(rows[1].ID, rows[0].ID) {
		t.Fatalf("duplicate tuple ID = %q, want suffix of %q", rows[1].ID, rows[0].ID)
	}

	again := []Connection{{Protocol: "tcp", LocalAddress: "127.0.0.1", LocalPort: 80, PID: 1}}
	AssignIDs(again)
	if again[0].ID != rows[0].ID {
		t.Fatalf("ID not stable across snapshots: %q vs %q", again[0].ID, rows[0].ID)
	}
}

func TestClone(t *testing.T) {
	if Clone(nil) != nil {
		t.Fatalf("Clone(nil) should be nil")
	}
	src := []Connection{{PID: 1}}
	dup := Clone(src)
	dup[0].PID = 2
	if src[0].PID != 1 {
		t.Fatalf("Clone shares backing array")
	}
}

package state

import "github.com/five82/portview/internal/conn"

// Statistics are aggregate counts over one snapshot. Rows with an
// unrecognised protocol or state count toward Total only.
type Statistics struct {
	Total       int `json:"total"`
	TCP         int `json:"tcp_count"`
	UDP         int `json:"udp_count"`
	Listening   int `json:"listening_count"`
	Established int `json:"established_count"`
}

// ComputeStatistics counts conns in a single pass.
func ComputeStatistics(conns []conn.Connection) Statistics {
	var st Statistics
	for _, c := range conns {
		st.Total++
		switch c.NormalizedProtocol() {
		case "tcp":
			st.TCP++
		case "udp":
			st.UDP++
		}
		switch c.NormalizedState() {
		case "listening":
			st.Listening++
		case "established":
			st.Established++
		}
	}
	return st
}

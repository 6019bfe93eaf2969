package conn

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// idNamespace scopes the name-based row identifiers.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("portview:connection"))

// AssignIDs fills in a stable identifier for every connection that lacks
// one. The identifier is derived from the socket tuple and owning pid so the
// same socket keeps its ID across refreshes. Duplicate tuples inside one
// snapshot get an ordinal suffix to keep IDs unique.
func AssignIDs(conns []Connection) {
	seen := make(map[string]int, len(conns))
	for i := range conns {
		if conns[i].ID != "" {
			seen[conns[i].ID]++
		}
	}
	for i := range conns {
		if conns[i].ID != "" {
			continue
		}
		id := uuid.NewSHA1(idNamespace, []byte(tupleKey(conns[i]))).String()
		n := seen[id]
		seen[id] = n + 1
		if n > 0 {
			id = id + "-" + strconv.Itoa(n)
		}
		conns[i].ID = id
	}
}

func tupleKey(c Connection) string {
	return fmt.Sprintf("%s|%s|%d|%s|%d|%d",
		c.NormalizedProtocol(), c.LocalAddress, c.LocalPort, c.RemoteAddress, c.RemotePort, c.PID)
}

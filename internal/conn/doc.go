// Package conn defines the connection record shared by every stage of the
// pipeline: the sources that enumerate sockets, the snapshot store, the
// filter/sort engine and the presentation layers.
//
// Values are plain data. Protocol and state keep the spelling reported by
// the source; comparisons go through NormalizedProtocol and NormalizedState
// so "TCP", "tcp" and " Tcp " are the same protocol.
package conn

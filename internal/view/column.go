package view

import (
	"fmt"
	"strconv"

	"github.com/five82/portview/internal/conn"
)

// Column names a sortable Connection field.
type Column int

const (
	ColumnNone Column = iota
	ColumnProtocol
	ColumnLocalAddress
	ColumnLocalPort
	ColumnRemoteAddress
	ColumnRemotePort
	ColumnState
	ColumnPID
	ColumnProcessName
	ColumnID
)

// accessor reads one column from a row. Exactly one of num or str is set.
type accessor struct {
	name  string
	title string
	num   func(conn.Connection) int64
	str   func(conn.Connection) string
}

func (a accessor) numeric() bool { return a.num != nil }

var accessors = map[Column]accessor{
	ColumnProtocol:      {name: "protocol", title: "Proto", str: func(c conn.Connection) string { return c.Protocol }},
	ColumnLocalAddress:  {name: "local_address", title: "Local Address", str: func(c conn.Connection) string { return c.LocalAddress }},
	ColumnLocalPort:     {name: "local_port", title: "L.Port", num: func(c conn.Connection) int64 { return int64(c.LocalPort) }},
	ColumnRemoteAddress: {name: "remote_address", title: "Remote Address", str: func(c conn.Connection) string { return c.RemoteAddress }},
	ColumnRemotePort:    {name: "remote_port", title: "R.Port", num: func(c conn.Connection) int64 { return int64(c.RemotePort) }},
	ColumnState:         {name: "state", title: "State", str: func(c conn.Connection) string { return c.State }},
	ColumnPID:           {name: "pid", title: "PID", num: func(c conn.Connection) int64 { return int64(c.PID) }},
	ColumnProcessName:   {name: "process_name", title: "Process", str: func(c conn.Connection) string { return c.ProcessName }},
	ColumnID:            {name: "id", title: "ID", str: func(c conn.Connection) string { return c.ID }},
}

// Columns lists the sortable columns in display order.
func Columns() []Column {
	return []Column{
		ColumnProtocol,
		ColumnLocalAddress,
		ColumnLocalPort,
		ColumnRemoteAddress,
		ColumnRemotePort,
		ColumnState,
		ColumnPID,
		ColumnProcessName,
		ColumnID,
	}
}

// DisplayColumns lists the columns shown in tables. ID is sortable but
// not displayed.
func DisplayColumns() []Column {
	cols := Columns()
	return cols[:len(cols)-1]
}

// String returns the snake_case column name, or "none".
func (c Column) String() string {
	if a, ok := accessors[c]; ok {
		return a.name
	}
	return "none"
}

// Title is the short table header for the column.
func (c Column) Title() string {
	if a, ok := accessors[c]; ok {
		return a.title
	}
	return ""
}

// Numeric reports whether the column compares numerically.
func (c Column) Numeric() bool {
	a, ok := accessors[c]
	return ok && a.numeric()
}

// Cell renders the column value of c for display. A zero port renders as
// the wildcard.
func (col Column) Cell(c conn.Connection) string {
	a, ok := accessors[col]
	if !ok {
		return ""
	}
	if !a.numeric() {
		return a.str(c)
	}
	v := a.num(c)
	if v == 0 && (col == ColumnLocalPort || col == ColumnRemotePort) {
		return conn.WildcardAddress
	}
	return strconv.FormatInt(v, 10)
}

// ParseColumn resolves a column name. snake_case, camelCase and dotted
// spellings ("localPort", "local.port") are accepted; "" and "none" yield
// ColumnNone.
func ParseColumn(name string) (Column, error) {
	key := normalizeKey(name)
	if key == "" || key == "none" {
		return ColumnNone, nil
	}
	for col, a := range accessors {
		if normalizeKey(a.name) == key {
			return col, nil
		}
	}
	switch key {
	case "process", "name":
		return ColumnProcessName, nil
	case "proto":
		return ColumnProtocol, nil
	}
	return ColumnNone, fmt.Errorf("unknown column %q", name)
}

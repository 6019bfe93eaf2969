package app

import (
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/five82/portview/internal/conn"
	"github.com/five82/portview/internal/source"
	"github.com/five82/portview/internal/state"
	"github.com/five82/portview/internal/view"
)

// ListOptions configure a one-shot listing.
type ListOptions struct {
	Options
	Protocol string
	Port     string
	Process  string
	SortBy   string
	Desc     bool
}

// List fetches the socket table once and renders it to w as a table
// followed by the statistics line.
func List(ctx context.Context, opts ListOptions, w io.Writer) error {
	cfg, err := loadConfig(opts.Options)
	if err != nil {
		return err
	}
	env, err := NewEnv(cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}

	filters, err := view.DefaultFilter().With(view.FilterProtocol, firstNonEmpty(opts.Protocol, cfg.Filter.Protocol))
	if err != nil {
		return err
	}
	filters.PortPrefix = firstNonEmpty(opts.Port, cfg.Filter.Port)
	filters.ProcessSubstring = firstNonEmpty(opts.Process, cfg.Filter.Process)

	col, err := view.ParseColumn(firstNonEmpty(opts.SortBy, cfg.Sort.Column))
	if err != nil {
		return err
	}
	sort := view.SortCriteria{Column: col}
	if opts.Desc {
		sort.Direction = view.Desc
	}

	monitor := NewMonitor(ctx, MonitorOptions{
		Fetcher: fetcher,
		Logger:  env.Log,
		Filters: filters,
		Sort:    sort,
	})
	defer monitor.Close()

	res := monitor.FetchNow(ctx)
	if res.Err != nil {
		fmt.Fprintf(w, "warning: %s\n", res.Err.Diagnostic())
	}
	RenderTable(w, monitor.Filtered())
	fmt.Fprintln(w, FormatStatistics(monitor.Snapshot()))
	return nil
}

// RenderTable writes rows as an ASCII table.
func RenderTable(w io.Writer, rows []conn.Connection) {
	table := tablewriter.NewWriter(w)
	cols := view.DisplayColumns()
	headers := make([]string, 0, len(cols))
	for _, col := range cols {
		headers = append(headers, col.Title())
	}
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetCaption(true, fmt.Sprintf("%d connections shown", len(rows)))

	for _, c := range rows {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = col.Cell(c)
		}
		table.Append(cells)
	}
	table.Render()
}

// FormatStatistics renders the one-line summary shown under listings.
func FormatStatistics(snap state.Snapshot) string {
	st := snap.Statistics
	origin := "live"
	if snap.Origin == source.OriginFallback {
		origin = "sample data"
	}
	return fmt.Sprintf("total %d  tcp %d  udp %d  listening %d  established %d  (%s)",
		st.Total, st.TCP, st.UDP, st.Listening, st.Established, origin)
}

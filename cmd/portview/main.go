package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/portview/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "portview: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var opts app.Options

	root := &cobra.Command{
		Use:           "portview",
		Short:         "Live view of the TCP/UDP socket table",
		Long:          "portview lists the host's TCP and UDP sockets with their owning processes, refreshing on demand or on a timer.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ~/.config/portview/config.toml)")
	flags.StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/portview/prefs.toml)")
	flags.IntVar(&opts.PollEvery, "poll", 0, "refresh interval in seconds (overrides config and saved prefs)")
	flags.StringVar(&opts.Source, "source", "", "connection source: auto, system, lsof or remote")

	root.AddCommand(newListCmd(&opts), newServeCmd(&opts))
	return root
}

func newListCmd(base *app.Options) *cobra.Command {
	var opts app.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the connection table once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Options = *base
			return app.List(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Protocol, "protocol", "p", "", "protocol filter: all, tcp or udp")
	flags.StringVar(&opts.Port, "port", "", "port prefix filter")
	flags.StringVar(&opts.Process, "process", "", "process name substring filter")
	flags.StringVarP(&opts.SortBy, "sort", "s", "", "sort column, e.g. local_port, pid, process_name")
	flags.BoolVar(&opts.Desc, "desc", false, "sort descending")
	return cmd
}

func newServeCmd(base *app.Options) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve this host's connection table over HTTP for remote viewers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Serve(cmd.Context(), app.ServeOptions{
				Options:    *base,
				ListenAddr: listen,
				Console:    cmd.ErrOrStderr(),
			})
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (default from config, 127.0.0.1:7488)")
	return cmd
}

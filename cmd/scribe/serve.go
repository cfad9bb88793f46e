package main

import (
	"github.com/aretw0/scribe/internal/cli"
	"github.com/aretw0/scribe/pkg/domain"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes every flow over a JSON API: list flows, inspect their graphs, start
runs, follow run events over SSE and scrape Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		var hooks []domain.LifecycleHooks
		if debug {
			hooks = append(hooks, cli.DebugHooks(logger))
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		return cli.Serve(sigCtx, cfg, logger, addr, hooks...)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}

package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oxhq/parinfer/mcp"
)

func newMCPCmd(e env) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `mcp serves parinfer to AI agents over the Model Context Protocol, reading
newline-delimited JSON-RPC from stdin and writing responses to stdout.
Editor sessions are kept in the configured database, or in memory.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(mcp.Config{
				Settings:  cfg,
				Version:   version,
				Debug:     cfg.Debug,
				LogWriter: e.stderr,
			}, e.stdin, e.stdout)
			if err != nil {
				return err
			}
			defer server.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.Start(ctx)
		},
	}
}

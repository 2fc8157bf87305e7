package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/genie/internal/cli"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes dialogue sessions as MCP tools so AI agents can drive an investigation.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP when --port is set.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig(cmd)
		exitOn(err)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		deps, err := cli.Build(ctx, cfg, logger)
		exitOn(err)
		defer deps.Close()

		transport := "stdio"
		if cfg.MCP.Port > 0 {
			transport = "sse"
		}
		exitOn(cli.RunMCP(ctx, deps, transport, cfg.MCP.Port))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().Int("port", 0, "Port to listen on with SSE (0 serves over stdio)")
}

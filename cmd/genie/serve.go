package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/genie/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves dialogue sessions over a JSON API with Server-Sent Events,
Prometheus metrics at /metrics and the OpenAPI document at /openapi.yaml.
Set --redis-addr to fan session updates out across instances.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig(cmd)
		exitOn(err)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		deps, err := cli.Build(ctx, cfg, logger)
		exitOn(err)
		defer deps.Close()

		exitOn(cli.RunServe(ctx, deps, cfg.HTTP.Addr))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().String("redis-addr", "", "Redis address for cross-instance session updates")
	serveCmd.Flags().String("redis-password", "", "Redis password")
	serveCmd.Flags().Int("redis-db", 0, "Redis database")
	serveCmd.Flags().String("redis-prefix", "genie:session:", "Redis channel prefix")
}

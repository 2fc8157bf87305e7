package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/genie/internal/config"
	"github.com/aretw0/genie/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "genie",
	Short: "Genie is a guided quality investigation assistant",
	Long: `Genie replays a scripted investigation dialogue: each step answers with
simulated latency and offers follow-up actions until the conversation hands
off to a dashboard view.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./genie.yaml when present)")
	flags.String("script", "", "Script file or loam directory (default: built-in quality investigation)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.Float64("latency-scale", 1, "Multiplier applied to every response delay (0 answers instantly)")
}

// loadConfig resolves configuration for cmd and builds the logger it asks for.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	level, err := cfg.Level()
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logging.New(level), nil
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

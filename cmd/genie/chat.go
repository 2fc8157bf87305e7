package main

import (
	"context"

	"github.com/aretw0/genie/internal/cli"
	"github.com/aretw0/genie/internal/logging"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Run the investigation dialogue in the terminal",
	Long: `Starts an interactive session. Pick an action by number, id or label;
type 'reset' to start over or 'exit' to leave. Ctrl+C ends the session.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig(cmd)
		exitOn(err)

		jsonMode, _ := cmd.Flags().GetBool("json")
		headless, _ := cmd.Flags().GetBool("headless")
		sessionID, _ := cmd.Flags().GetString("session-id")

		// Terminal output owns stdout; keep logs out of the way unless asked for.
		if !cmd.Flags().Changed("log-level") && cfg.LogLevel == "info" {
			logger = logging.NewNop()
		}

		deps, err := cli.Build(context.Background(), cfg, logger)
		exitOn(err)
		defer deps.Close()

		err = cli.RunChat(context.Background(), deps, cli.ChatOptions{
			SessionID: sessionID,
			JSON:      jsonMode,
			Headless:  headless,
		})
		exitOn(err)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	chatCmd.Flags().Bool("headless", false, "Run in headless mode (no banner or prompts)")
	chatCmd.Flags().String("session-id", "", "Session identifier (default: random)")

	// Chat is the default when no command is given.
	rootCmd.Run = chatCmd.Run
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())
}

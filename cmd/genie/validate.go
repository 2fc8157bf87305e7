package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/genie"
	"github.com/aretw0/genie/pkg/adapters/file"
	"github.com/aretw0/genie/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [script]",
	Short: "Check a script for consistency",
	Long: `Loads a script and reports every structural problem: dangling action
targets, unreachable steps, missing responses and malformed attachments.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if schema, _ := cmd.Flags().GetBool("schema"); schema {
			os.Stdout.Write(file.Schema())
			return
		}

		path, _ := cmd.Flags().GetString("script")
		if len(args) > 0 {
			path = args[0]
		}

		eng, err := genie.New(path)
		if err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				fmt.Printf("Validation failed with %d problem(s):\n", len(verr.Problems))
				for _, p := range verr.Problems {
					fmt.Printf("  - %s\n", p)
				}
				os.Exit(1)
			}
			exitOn(err)
		}
		fmt.Printf("Script %q is valid! ✅ (%d steps)\n", eng.Name, len(eng.Store().Steps()))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Bool("schema", false, "Print the JSON schema of script files and exit")
}

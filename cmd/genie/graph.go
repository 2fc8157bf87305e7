package main

import (
	"fmt"

	"github.com/aretw0/genie"
	"github.com/aretw0/genie/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [script]",
	Short: "Export the dialogue graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the steps and the actions linking them.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("script")
		if len(args) > 0 {
			path = args[0]
		}

		eng, err := genie.New(path)
		exitOn(err)

		fmt.Print(graph.GenerateMermaid(eng.Store().Script(), nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

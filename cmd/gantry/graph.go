package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/gantry/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [pipeline]",
	Short: "Export the job graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of a pipeline's jobs and their needs relationships. With --run, jobs are styled by that run's results.`,
	Run: func(cmd *cobra.Command, args []string) {
		engine, cleanup, err := buildEngine(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		pipeline, err := pickPipeline(engine.Pipelines(), args)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		var overlay *graph.RunOverlay
		if runID, _ := cmd.Flags().GetString("run"); runID != "" {
			run, err := engine.Run(cmd.Context(), runID)
			if err != nil {
				fmt.Printf("Error loading run: %v\n", err)
				os.Exit(1)
			}
			overlay = graph.OverlayFromRun(run)
		}

		fmt.Print(graph.GenerateMermaid(pipeline, overlay))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("run", "", "Run ID to overlay job statuses from")
}

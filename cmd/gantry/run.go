package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/gantry/internal/presentation/tui"
	"github.com/aretw0/gantry/pkg/domain"
)

// runCmd executes a pipeline locally, without waiting for a webhook.
var runCmd = &cobra.Command{
	Use:   "run [pipeline]",
	Short: "Execute a pipeline locally",
	Long:  `Runs a pipeline to completion in the foreground, as if a push event had arrived, and prints a summary. Exits non-zero when the run fails.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runLocal(cmd, args); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("event", "push", "Event type to simulate (push, pull_request)")
	runCmd.Flags().String("branch", "main", "Branch the simulated event targets")
	runCmd.Flags().String("commit", "", "Commit SHA to check out (empty skips checkout)")
	runCmd.Flags().String("repo", "", "Repository URL to clone (empty runs in a bare workspace)")
}

func runLocal(cmd *cobra.Command, args []string) error {
	engine, cleanup, err := buildEngine(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	defer engine.Close(cmd.Context())

	pipeline, err := pickPipeline(engine.Pipelines(), args)
	if err != nil {
		return err
	}

	eventName, _ := cmd.Flags().GetString("event")
	branch, _ := cmd.Flags().GetString("branch")
	commit, _ := cmd.Flags().GetString("commit")
	repo, _ := cmd.Flags().GetString("repo")

	ev := domain.Event{
		Type:   domain.EventType(eventName),
		Branch: branch,
		Commit: commit,
		Repo:   repo,
	}

	run, err := engine.Execute(cmd.Context(), pipeline, ev)
	if err != nil {
		return err
	}

	printSummary(run)

	if run.Status != domain.StatusSucceeded {
		os.Exit(1)
	}
	return nil
}

func pickPipeline(pipelines []*domain.Pipeline, args []string) (*domain.Pipeline, error) {
	if len(args) > 0 {
		for _, p := range pipelines {
			if p.Name == args[0] {
				return p, nil
			}
		}
		return nil, fmt.Errorf("pipeline %q not found", args[0])
	}
	switch len(pipelines) {
	case 0:
		return nil, fmt.Errorf("no pipelines loaded")
	case 1:
		return pipelines[0], nil
	}
	names := make([]string, 0, len(pipelines))
	for _, p := range pipelines {
		names = append(names, p.Name)
	}
	return nil, fmt.Errorf("multiple pipelines loaded, pick one of %v", names)
}

// printSummary renders the run as markdown, styled when stdout is a terminal.
func printSummary(run *domain.Run) {
	md := tui.RunSummary(run)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		render := tui.NewRenderer()
		if out, err := render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

package gantry_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/gantry"
	"github.com/aretw0/gantry/internal/adapters/memory"
	"github.com/aretw0/gantry/pkg/domain"
)

// ExampleEngine_Execute demonstrates running a pipeline registered in code,
// with in-memory stores. This is useful for testing, embedded scenarios, or
// when you don't want to rely on the file system.
func ExampleEngine_Execute() {
	// 1. Initialize the engine without a workflow directory.
	engine, err := gantry.New("",
		gantry.WithRunStore(memory.New()),
		gantry.WithLogStore(memory.NewLogStore()),
		gantry.WithWorkspacePreparer(nil), // no checkout, run in scratch dirs
	)
	if err != nil {
		log.Fatal(err)
	}

	// 2. Register a pipeline: two independent jobs, like the classic
	// lint-and-test split.
	err = engine.Register(&domain.Pipeline{
		Name: "ci",
		On: domain.Trigger{
			PullRequest: &domain.TriggerRule{},
			Push:        &domain.TriggerRule{Branches: []string{"main"}},
		},
		Jobs: []domain.Job{
			{ID: "lint", RunsOn: "linux", Steps: []domain.Step{{Name: "Lint", Run: "echo lint ok"}}},
			{ID: "test", RunsOn: "linux", Steps: []domain.Step{{Name: "Test", Run: "echo tests ok"}}},
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	// 3. Execute synchronously for a push to main.
	pipeline, _ := engine.Pipeline("ci")
	run, err := engine.Execute(context.Background(), pipeline, domain.Event{
		Type:   domain.EventPush,
		Branch: "main",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(run.Status)
	for _, job := range run.Jobs {
		fmt.Printf("%s: %s\n", job.JobID, job.Status)
	}
	// Output:
	// succeeded
	// lint: succeeded
	// test: succeeded
}

/*
Package gantry is a lightweight continuous-integration engine: it turns
repository events (pushes, pull requests) into pipeline runs.

A pipeline is declared in a small YAML file: a trigger surface ("on") and a
set of named jobs, each with a runner label and an ordered list of shell
steps. Jobs are independent by default: they run concurrently in isolated
workspaces, and one job's failure never interrupts another. Within a job,
steps run strictly in declared order, and a step's non-zero exit fails the
job. Explicit "needs" edges add ordering where it is wanted.

The engine follows a Hexagonal Architecture: the core scheduler is decoupled
from adapters for persistence (filesystem, Redis, SQLite), step execution
(local shell), and workspace preparation (git). This lets Gantry be embedded
in any surface: CLI, HTTP server, or a larger platform.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/gantry"
		"github.com/aretw0/gantry/pkg/domain"
	)

	func main() {
		// Load all workflow files from ./.gantry/workflows
		eng, err := gantry.New("./.gantry/workflows")
		if err != nil {
			log.Fatal(err)
		}

		// Deliver an event; every matching pipeline gets a run.
		runs, err := eng.Dispatch(context.Background(), domain.Event{
			Type:   domain.EventPush,
			Branch: "main",
			Commit: "4f2a91c",
			Repo:   "/srv/git/project.git",
		})
		if err != nil {
			log.Fatal(err)
		}
		for _, run := range runs {
			log.Println("queued:", run.ID)
		}
	}
*/
package gantry

/*
Package domain contains the core domain models for the Gantry engine.

It defines the fundamental entities of the CI pipeline: Pipelines, Jobs, Steps,
trigger Events, and the execution Run. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Pipeline: A named workflow definition (trigger surface plus a set of jobs).
  - Job: An independently scheduled unit of work with an ordered list of steps.
  - Event: A repository event (push, pull request) that may trigger a run.
  - Run: The runtime record of one pipeline execution for one event.
*/
package domain

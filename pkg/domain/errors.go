package domain

import "errors"

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrJobNotFound is returned when a job ID does not exist in a pipeline or run.
var ErrJobNotFound = errors.New("job not found")

// ErrPipelineNotFound is returned when no pipeline with the given name is registered.
var ErrPipelineNotFound = errors.New("pipeline not found")

// ErrNoMatchingTrigger is returned when an event matches no registered pipeline.
var ErrNoMatchingTrigger = errors.New("no pipeline trigger matches event")

// ErrRunFinished is returned when an operation requires an in-flight run.
var ErrRunFinished = errors.New("run already finished")

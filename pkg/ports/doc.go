/*
Package ports defines the driven ports (interfaces) for the Gantry engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various run stores, log backends, and step executors.

# Key Interfaces

  - RunStore: Responsible for persisting and loading Run records.
  - LogStore: Responsible for persisting captured step output per job.
  - Executor: Responsible for running a single step command.
  - WorkspacePreparer: Responsible for materializing the source tree a job builds.
  - DistributedLocker: Provides distributed locking when several engine
    replicas share a store.

The package also ships contract test suites (RunStoreContract, LogStoreContract)
that every adapter implementation is expected to pass.
*/
package ports

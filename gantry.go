package gantry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/gantry/internal/adapters/file"
	"github.com/aretw0/gantry/internal/adapters/git"
	"github.com/aretw0/gantry/internal/adapters/shell"
	"github.com/aretw0/gantry/internal/config"
	"github.com/aretw0/gantry/internal/engine"
	"github.com/aretw0/gantry/internal/logging"
	"github.com/aretw0/gantry/pkg/domain"
	"github.com/aretw0/gantry/pkg/ports"
)

// Engine is the high-level entry point for the Gantry library.
// It holds the registered pipelines and wraps the internal scheduler with a
// simplified API for consumers.
type Engine struct {
	core      *engine.Engine
	runs      ports.RunStore
	logs      ports.LogStore
	executor  ports.Executor
	preparer  ports.WorkspacePreparer
	hooks     domain.LifecycleHooks
	locker    ports.DistributedLocker
	logger    *slog.Logger
	labels    []string
	parallel  int
	workRoot  string
	pipelines []*domain.Pipeline

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup

	Name string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithRunStore injects a custom run store, bypassing the default file store.
func WithRunStore(s ports.RunStore) Option {
	return func(e *Engine) {
		e.runs = s
	}
}

// WithLogStore injects a custom log store.
func WithLogStore(s ports.LogStore) Option {
	return func(e *Engine) {
		e.logs = s
	}
}

// WithExecutor injects a custom step executor.
func WithExecutor(x ports.Executor) Option {
	return func(e *Engine) {
		e.executor = x
	}
}

// WithWorkspacePreparer injects a custom workspace preparer. Pass nil to
// disable checkouts entirely (jobs then run in bare scratch directories).
func WithWorkspacePreparer(p ports.WorkspacePreparer) Option {
	return func(e *Engine) {
		e.preparer = p
	}
}

// WithDistributedLocker makes run execution mutually exclusive across engine
// replicas sharing a run store. Each run is locked for the duration of its
// execution.
func WithDistributedLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLabels restricts accepted runner labels (see engine.WithLabels).
func WithLabels(labels ...string) Option {
	return func(e *Engine) {
		e.labels = labels
	}
}

// WithMaxParallel bounds concurrently running jobs. Zero means unlimited.
func WithMaxParallel(n int) Option {
	return func(e *Engine) {
		e.parallel = n
	}
}

// WithWorkRoot sets the directory for job workspaces.
func WithWorkRoot(dir string) Option {
	return func(e *Engine) {
		e.workRoot = dir
	}
}

// New initializes a Gantry Engine from a directory of workflow files
// (*.yml / *.yaml). An empty dir is allowed; pipelines can then be added
// with Register.
func New(dir string, opts ...Option) (*Engine, error) {
	eng := &Engine{
		preparer: git.New(),
		cancels:  make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.executor == nil {
		eng.executor = shell.New()
	}
	if eng.runs == nil {
		eng.runs = file.New("")
	}
	if eng.logs == nil {
		eng.logs = file.NewLogStore("")
	}

	if dir != "" {
		absPath, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)
		eng.logger = eng.logger.With("workflows", eng.Name)

		if err := eng.loadDir(absPath); err != nil {
			return nil, err
		}
	}

	eng.core = engine.New(eng.executor, eng.runs, eng.logs,
		engine.WithWorkspacePreparer(eng.preparer),
		engine.WithLifecycleHooks(eng.hooks),
		engine.WithLogger(eng.logger),
		engine.WithLabels(eng.labels...),
		engine.WithMaxParallel(eng.parallel),
		engine.WithWorkRoot(eng.workRoot),
	)
	return eng, nil
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read workflow directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yml", ".yaml":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		pipeline, err := config.Load(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if err := e.Register(pipeline); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Register adds a pipeline definition. Names must be unique.
func (e *Engine) Register(p *domain.Pipeline) error {
	if err := config.Validate(p); err != nil {
		return err
	}
	for _, existing := range e.pipelines {
		if existing.Name == p.Name {
			return fmt.Errorf("pipeline %q already registered", p.Name)
		}
	}
	e.pipelines = append(e.pipelines, p)
	return nil
}

// Pipelines returns the registered pipeline definitions.
func (e *Engine) Pipelines() []*domain.Pipeline {
	return e.pipelines
}

// Pipeline returns the registered pipeline with the given name.
func (e *Engine) Pipeline(name string) (*domain.Pipeline, error) {
	for _, p := range e.pipelines {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrPipelineNotFound, name)
}

// Execute runs the pipeline for the event and blocks until the run finishes.
// Trigger matching is the caller's concern here; use Dispatch for
// event-driven scheduling.
func (e *Engine) Execute(ctx context.Context, pipeline *domain.Pipeline, ev domain.Event) (*domain.Run, error) {
	run, err := e.newRun(ctx, pipeline, ev)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.track(run.ID, cancel)
	defer e.untrack(run.ID)

	if err := e.execute(runCtx, pipeline, run); err != nil {
		return run, err
	}
	return run, nil
}

// runLockTTL bounds how long a crashed replica can hold a run lock. It must
// comfortably exceed the longest plausible run.
const runLockTTL = 4 * time.Hour

// execute guards the core scheduler with the distributed lock, when one is
// configured. Replicas sharing a run store then never execute the same run
// twice.
func (e *Engine) execute(ctx context.Context, pipeline *domain.Pipeline, run *domain.Run) error {
	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, "run:"+run.ID, runLockTTL)
		if err != nil {
			return fmt.Errorf("failed to lock run %s: %w", run.ID, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				e.logger.Error("failed to release run lock", "run", run.ID, "error", err)
			}
		}()
	}
	return e.core.Execute(ctx, pipeline, run)
}

// Dispatch creates one queued run per pipeline whose trigger surface matches
// the event and executes them in the background. It returns the queued runs
// immediately, or domain.ErrNoMatchingTrigger when nothing matches.
func (e *Engine) Dispatch(ctx context.Context, ev domain.Event) ([]*domain.Run, error) {
	var started []*domain.Run
	for _, pipeline := range e.pipelines {
		if !pipeline.On.Matches(ev) {
			continue
		}
		run, err := e.newRun(ctx, pipeline, ev)
		if err != nil {
			return started, err
		}
		started = append(started, run)

		// Background execution outlives the request that delivered the
		// event; cancellation happens through Cancel or Close.
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		e.track(run.ID, cancel)

		p := pipeline
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			defer e.untrack(run.ID)
			if err := e.execute(runCtx, p, run); err != nil {
				e.logger.Error("run execution failed", "run", run.ID, "error", err)
			}
		}()
	}

	if len(started) == 0 {
		return nil, domain.ErrNoMatchingTrigger
	}
	return started, nil
}

// Cancel stops an in-flight run. Canceling a finished run returns
// domain.ErrRunFinished; an unknown ID returns domain.ErrRunNotFound.
func (e *Engine) Cancel(ctx context.Context, runID string) error {
	e.mu.Lock()
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()
	if ok {
		cancel()
		return nil
	}

	run, err := e.runs.Load(ctx, runID)
	if err != nil {
		return err
	}
	if run.Finished() {
		return domain.ErrRunFinished
	}
	// Queued or owned by another replica; nothing this instance can do.
	return fmt.Errorf("run %s is not executing on this instance", runID)
}

// Runs lists the stored runs, newest first.
func (e *Engine) Runs(ctx context.Context) ([]*domain.Run, error) {
	return e.runs.List(ctx)
}

// Run loads a single run by ID.
func (e *Engine) Run(ctx context.Context, runID string) (*domain.Run, error) {
	return e.runs.Load(ctx, runID)
}

// JobLog returns the captured output of one job of a run.
func (e *Engine) JobLog(ctx context.Context, runID, jobID string) ([]byte, error) {
	if _, err := e.runs.Load(ctx, runID); err != nil {
		return nil, err
	}
	data, err := e.logs.Read(ctx, runID, jobID)
	if errors.Is(err, domain.ErrRunNotFound) {
		// The run exists but the job never wrote output.
		return nil, fmt.Errorf("%w: %s", domain.ErrJobNotFound, jobID)
	}
	return data, err
}

// Close waits for in-flight background runs to finish, up to the context
// deadline. After the deadline the remaining runs are canceled.
func (e *Engine) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		e.mu.Lock()
		for _, cancel := range e.cancels {
			cancel()
		}
		e.mu.Unlock()
		<-done
		return ctx.Err()
	}
}

func (e *Engine) newRun(ctx context.Context, pipeline *domain.Pipeline, ev domain.Event) (*domain.Run, error) {
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now().UTC()
	}
	run := domain.NewRun(newRunID(), pipeline, ev)
	if err := e.runs.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to persist queued run: %w", err)
	}
	return run, nil
}

func (e *Engine) track(runID string, cancel context.CancelFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancels[runID] = cancel
}

func (e *Engine) untrack(runID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cancel, ok := e.cancels[runID]; ok {
		cancel()
		delete(e.cancels, runID)
	}
}

func newRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

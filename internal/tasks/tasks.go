// package tasks implements the background migration pipeline.
//
// The core abstraction is MigrationEngine, which walks a persisted migration
// session through its stages. Runs emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers; all state lives in the
// session store, so status queries never touch the running goroutine.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wamigrate/wamigrate/internal/models"
	"github.com/wamigrate/wamigrate/internal/shared"
)

// CancelReason is recorded on sessions failed through Cancel.
const CancelReason = "Migration cancelled by user"

// pipelineSteps is the stage order of a successful run with the progress
// value each stage persists.
var pipelineSteps = []struct {
	status   string
	progress int
}{
	{models.StatusPreparing, 25},
	{models.StatusExporting, 50},
	{models.StatusConverting, 75},
	{models.StatusCompleted, 100},
}

// StageFunc performs the work of one pipeline stage. A non-nil error fails
// the whole run.
type StageFunc func(ctx context.Context, session *models.MigrationSession) error

// SessionStore is the subset of the migration repository the engine needs.
type SessionStore interface {
	Get(id string) (*models.MigrationSession, error)
	Transition(id, status string, progress int, errorMessage string) error
	Fail(id, reason string) error
}

// MigrationEngine defines operations for running migration sessions in the
// background.
type MigrationEngine interface {
	// Launch starts the pipeline for an existing session in a new goroutine.
	Launch(ctx context.Context, id string, progress chan<- ProgressUpdate) error

	// Cancel stops a running session and marks it failed.
	Cancel(id string) error
}

// PipelineEngine implements MigrationEngine over a session store. Each launch
// registers a per-session cancel function; Cancel resolves through that
// registry, so only the store is shared between runs.
type PipelineEngine struct {
	store  SessionStore
	logger *log.Logger
	delay  time.Duration

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	stages  map[string]StageFunc
	wg      sync.WaitGroup
}

// NewPipelineEngine creates an engine persisting through store, pausing delay
// between stages.
func NewPipelineEngine(store SessionStore, delay time.Duration, logger *log.Logger) *PipelineEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PipelineEngine{
		store:   store,
		logger:  logger,
		delay:   delay,
		cancels: make(map[string]context.CancelFunc),
		stages:  make(map[string]StageFunc),
	}
}

// SetStage registers the work function for a pipeline status. Stages without
// a registered function only persist the transition.
func (e *PipelineEngine) SetStage(status string, fn StageFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stages[status] = fn
}

// Launch starts the pipeline for session id. The session must exist and be
// non-terminal; a session already running returns ErrMigrationActive.
func (e *PipelineEngine) Launch(ctx context.Context, id string, progress chan<- ProgressUpdate) error {
	session, err := e.store.Get(id)
	if err != nil {
		return err
	}
	if session.Terminal() {
		return fmt.Errorf("%w: %s", shared.ErrTerminalState, session.Status())
	}

	runCtx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	if _, active := e.cancels[id]; active {
		e.mu.Unlock()
		cancel()
		return fmt.Errorf("%w: session %s", shared.ErrMigrationActive, id)
	}
	e.cancels[id] = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel()
		defer e.release(id)
		e.run(runCtx, session, progress)
	}()

	return nil
}

// Cancel marks session id failed and stops its goroutine if one is running.
// Sessions that already finished return ErrTerminalState.
func (e *PipelineEngine) Cancel(id string) error {
	session, err := e.store.Get(id)
	if err != nil {
		return err
	}
	if session.Terminal() {
		return fmt.Errorf("%w: %s", shared.ErrTerminalState, session.Status())
	}

	if err := e.store.Fail(id, CancelReason); err != nil {
		return err
	}

	e.mu.Lock()
	cancel, ok := e.cancels[id]
	e.mu.Unlock()
	if ok {
		cancel()
	}

	e.logger.Info("migration cancelled", "id", id)
	return nil
}

// Wait blocks until all launched runs have returned.
func (e *PipelineEngine) Wait() {
	e.wg.Wait()
}

func (e *PipelineEngine) release(id string) {
	e.mu.Lock()
	delete(e.cancels, id)
	e.mu.Unlock()
}

// run walks the session through the pipeline. The store's transition guard
// makes the failed state sticky, so a run racing Cancel stops at its next
// persistence attempt.
func (e *PipelineEngine) run(ctx context.Context, session *models.MigrationSession, progress chan<- ProgressUpdate) {
	id := session.ID()
	e.logger.Info("migration started", "id", id, "from", session.FromPhone(), "to", session.ToPhone())

	for i, step := range pipelineSteps {
		if err := ctx.Err(); err != nil {
			e.fail(id, progress, CancelReason)
			return
		}

		e.mu.Lock()
		stage := e.stages[step.status]
		e.mu.Unlock()

		if stage != nil {
			if err := stage(ctx, session); err != nil {
				e.fail(id, progress, fmt.Sprintf("%s stage failed: %v", step.status, err))
				return
			}
		}

		if err := e.store.Transition(id, step.status, step.progress, ""); err != nil {
			if errors.Is(err, shared.ErrTerminalState) {
				// Cancelled or failed out from under us.
				return
			}
			e.logger.Error("failed to persist stage", "id", id, "status", step.status, "error", err)
			e.fail(id, progress, fmt.Sprintf("failed to persist %s stage", step.status))
			return
		}

		e.sendProgress(progress, stageUpdate(step.status, step.progress))

		if i < len(pipelineSteps)-1 && e.delay > 0 {
			select {
			case <-ctx.Done():
				e.fail(id, progress, CancelReason)
				return
			case <-time.After(e.delay):
			}
		}
	}

	e.logger.Info("migration completed", "id", id)
}

// fail transitions the session to failed keeping its last persisted progress.
func (e *PipelineEngine) fail(id string, progress chan<- ProgressUpdate, reason string) {
	if err := e.store.Fail(id, reason); err != nil {
		if !errors.Is(err, shared.ErrTerminalState) {
			e.logger.Error("failed to mark session failed", "id", id, "error", err)
		}
		return
	}

	percentage := 0
	if current, err := e.store.Get(id); err == nil {
		percentage = current.Progress()
	}
	e.sendProgress(progress, failedUpdate(percentage, reason))
	e.logger.Warn("migration failed", "id", id, "reason", reason)
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PipelineEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

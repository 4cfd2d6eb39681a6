package workflow

import (
	"context"
	"errors"
	"fmt"

	"log/slog"

	"github.com/hirepipe/hirepipe/pkg/models"
	"github.com/hirepipe/hirepipe/pkg/repository"
)

// Engine drives a requisition through the stage machine
// Screening -> Interviewing -> Reporting -> Done, checkpointing the whole
// state record after every successful stage pass. Execution is single-writer
// per job: stages run strictly in sequence.
type Engine struct {
	store  repository.StateRepo
	runner *Runner
	logger *slog.Logger
}

func NewEngine(store repository.StateRepo, runner *Runner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, runner: runner, logger: logger}
}

// Submit creates and persists the initial state for a new requisition.
func (e *Engine) Submit(ctx context.Context, jobID, role, description string, resumes []string) (*models.WorkflowState, error) {
	if jobID == "" {
		return nil, fmt.Errorf("empty job id")
	}

	_, err := e.store.GetState(ctx, jobID)
	if err == nil {
		return nil, fmt.Errorf("job %s: %w", jobID, ErrAlreadySubmitted)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check job %s: %w", jobID, err)
	}

	state := models.NewWorkflowState(jobID, role, description, resumes)
	if err := e.store.PutState(ctx, state); err != nil {
		return nil, fmt.Errorf("persist job %s: %w", jobID, err)
	}

	e.logger.Info("requisition submitted",
		slog.String("job_id", jobID),
		slog.String("role", role),
		slog.Int("resumes", len(resumes)))
	return state, nil
}

// RunToCompletion advances the workflow from its current stage until it
// reaches Done. On failure it returns the last valid checkpoint together
// with a StageError naming the failed stage; the stored state is exactly
// that checkpoint.
func (e *Engine) RunToCompletion(ctx context.Context, jobID string) (*models.WorkflowState, error) {
	state, err := e.store.GetState(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", jobID, err)
	}

	for state.Stage != models.StageDone {
		if err := ctx.Err(); err != nil {
			return state, &StageError{Stage: state.Stage, Err: err, Snapshot: state}
		}

		next, err := e.runner.Run(ctx, state.Stage, state)
		if err != nil {
			e.logger.Error("stage failed",
				slog.String("job_id", jobID),
				slog.String("stage", string(state.Stage)),
				slog.String("error", err.Error()))
			return state, &StageError{Stage: state.Stage, Err: err, Snapshot: state}
		}

		if err := e.store.PutState(ctx, next); err != nil {
			return state, &StageError{Stage: state.Stage, Err: fmt.Errorf("checkpoint: %w", err), Snapshot: state}
		}

		e.logger.Info("stage checkpointed",
			slog.String("job_id", jobID),
			slog.String("from", string(state.Stage)),
			slog.String("to", string(next.Stage)),
			slog.Int64("version", next.Version))
		state = next
	}

	return state, nil
}

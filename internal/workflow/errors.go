package workflow

import (
	"errors"
	"fmt"

	"github.com/hirepipe/hirepipe/pkg/models"
)

// ErrAlreadySubmitted is returned by Submit for a job id that already has a
// persisted workflow.
var ErrAlreadySubmitted = errors.New("job already submitted")

// StageError is a fatal failure inside one stage run. Snapshot holds the last
// valid state checkpoint, which is what remains persisted: a failing stage
// never leaves partial writes behind.
type StageError struct {
	Stage    models.Stage
	Err      error
	Snapshot *models.WorkflowState
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// InvariantViolation marks a state that breaks a structural invariant, such
// as a round-number mismatch or a candidate interviewed without a passed
// screening result. Detected at stage boundaries; fatal for the run.
type InvariantViolation struct {
	Err error
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: %v", e.Err)
}

func (e *InvariantViolation) Unwrap() error { return e.Err }

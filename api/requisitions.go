package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hirepipe/hirepipe/internal/workflow"
	"github.com/hirepipe/hirepipe/pkg/repository"
)

// Enqueuer submits background work; satisfied by jobs.WorkerPool.
type Enqueuer interface {
	Enqueue(ctx context.Context, typ string, payload any, priority int, maxAttempts int) (int64, error)
}

type RequisitionsHandler struct {
	engine *workflow.Engine
	states repository.StateRepo
	queue  Enqueuer
}

func NewRequisitionsHandler(engine *workflow.Engine, states repository.StateRepo, queue Enqueuer) *RequisitionsHandler {
	return &RequisitionsHandler{engine: engine, states: states, queue: queue}
}

type createRequisitionRequest struct {
	JobID          string   `json:"job_id,omitempty"`
	Role           string   `json:"role"`
	JobDescription string   `json:"job_description"`
	Resumes        []string `json:"resumes"`
}

type createRequisitionResponse struct {
	JobID string `json:"job_id"`
	Stage string `json:"stage"`
}

// Create submits a new requisition and queues the pipeline run.
func (h *RequisitionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequisitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Role == "" || req.JobDescription == "" {
		http.Error(w, "role and job_description required", http.StatusBadRequest)
		return
	}
	if req.JobID == "" {
		req.JobID = uuid.NewString()
	}

	state, err := h.engine.Submit(r.Context(), req.JobID, req.Role, req.JobDescription, req.Resumes)
	if err != nil {
		if errors.Is(err, workflow.ErrAlreadySubmitted) {
			http.Error(w, "job already submitted", http.StatusConflict)
			return
		}
		http.Error(w, "failed to submit requisition", http.StatusInternalServerError)
		return
	}

	// queue the async run; the job can be re-queued via the run endpoint
	if _, err := h.queue.Enqueue(r.Context(), "workflow.run", map[string]string{"job_id": req.JobID}, 100, 3); err != nil {
		logger.Error("enqueue workflow.run", slog.String("job_id", req.JobID), slog.Any("err", err))
	}

	writeJSON(w, createRequisitionResponse{JobID: state.JobID, Stage: string(state.Stage)}, http.StatusAccepted)
}

// List returns all known job ids.
func (h *RequisitionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.states.ListJobIDs(r.Context())
	if err != nil {
		http.Error(w, "failed to list requisitions", http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	writeJSON(w, map[string]any{"job_ids": ids}, http.StatusOK)
}

// Get returns the current workflow state for a job.
func (h *RequisitionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["job_id"]

	state, err := h.states.GetState(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load requisition", http.StatusInternalServerError)
		return
	}

	writeJSON(w, state, http.StatusOK)
}

// Report returns the final HR report once the pipeline is done.
func (h *RequisitionsHandler) Report(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["job_id"]

	state, err := h.states.GetState(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load requisition", http.StatusInternalServerError)
		return
	}
	if !state.Complete() {
		writeJSON(w, map[string]any{"job_id": jobID, "stage": state.Stage, "error": "report not ready"}, http.StatusConflict)
		return
	}

	writeJSON(w, map[string]any{"job_id": jobID, "report": state.Report}, http.StatusOK)
}

// Snapshots lists the persisted checkpoints of a job in version order.
func (h *RequisitionsHandler) Snapshots(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["job_id"]

	snaps, err := h.states.ListSnapshots(r.Context(), jobID)
	if err != nil {
		http.Error(w, "failed to list snapshots", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"job_id": jobID, "snapshots": snaps}, http.StatusOK)
}

// Run drives the workflow synchronously until Done or the first stage failure.
func (h *RequisitionsHandler) Run(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["job_id"]

	state, err := h.engine.RunToCompletion(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		var se *workflow.StageError
		if errors.As(err, &se) {
			writeJSON(w, map[string]any{
				"job_id": jobID,
				"stage":  se.Stage,
				"error":  se.Err.Error(),
				"state":  se.Snapshot,
			}, http.StatusInternalServerError)
			return
		}
		http.Error(w, "run failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, state, http.StatusOK)
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hirepipe/hirepipe/pkg/models"
	"github.com/hirepipe/hirepipe/pkg/repository"
)

// GetState loads the workflow state for a job id.
func (r *SQLiteRepo) GetState(ctx context.Context, jobID string) (*models.WorkflowState, error) {
	row := r.conn.QueryRow(ctx, `SELECT state_json, version, created, updated FROM workflow_states WHERE job_id = ?`, jobID)

	var stateJSON string
	var version, created, updated int64
	if err := row.Scan(&stateJSON, &version, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get state %s: %w", jobID, err)
	}

	var s models.WorkflowState
	if err := json.Unmarshal([]byte(stateJSON), &s); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", jobID, err)
	}
	s.Version = version
	s.Created = created
	s.Updated = updated
	return &s, nil
}

// PutState replaces the whole record atomically and appends an audit
// snapshot in the same transaction. The caller's state gets the bumped
// version and updated timestamp on success.
func (r *SQLiteRepo) PutState(ctx context.Context, state *models.WorkflowState) error {
	if state == nil || state.JobID == "" {
		return fmt.Errorf("state with job id is required")
	}

	ts := now()
	version := state.Version + 1

	cp := *state
	cp.Version = version
	cp.Updated = ts
	b, err := json.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("encode state %s: %w", state.JobID, err)
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	upsert := `INSERT INTO workflow_states (job_id, stage, state_json, version, created, updated) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET stage=excluded.stage, state_json=excluded.state_json, version=excluded.version, updated=excluded.updated`
	if _, err := tx.ExecContext(ctx, upsert, state.JobID, string(state.Stage), string(b), version, cp.Created, ts); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("put state %s: %w", state.JobID, err)
	}

	snap := `INSERT INTO state_snapshots (job_id, stage, state_json, version, created) VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, snap, state.JobID, string(state.Stage), string(b), version, ts); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("snapshot state %s: %w", state.JobID, err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	state.Version = version
	state.Updated = ts
	return nil
}

// ListJobIDs returns all known requisition ids.
func (r *SQLiteRepo) ListJobIDs(ctx context.Context) ([]string, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT job_id FROM workflow_states ORDER BY job_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ListSnapshots returns the checkpoint history for a job, oldest first.
func (r *SQLiteRepo) ListSnapshots(ctx context.Context, jobID string) ([]models.StateSnapshot, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, job_id, stage, state_json, version, created FROM state_snapshots WHERE job_id = ? ORDER BY version`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StateSnapshot
	for rows.Next() {
		var s models.StateSnapshot
		var stage string
		if err := rows.Scan(&s.ID, &s.JobID, &stage, &s.StateJSON, &s.Version, &s.Created); err != nil {
			return nil, err
		}
		s.Stage = models.Stage(stage)
		out = append(out, s)
	}
	return out, rows.Err()
}

package models

import (
	"encoding/json"
	"time"
)

// Stage names the workflow step a requisition is currently in.
type Stage string

const (
	StageScreening    Stage = "screening"
	StageInterviewing Stage = "interviewing"
	StageReporting    Stage = "reporting"
	StageDone         Stage = "done"
)

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageScreening, StageInterviewing, StageReporting, StageDone:
		return true
	}
	return false
}

// ScreeningDecision is the outcome of screening one resume.
type ScreeningDecision string

const (
	ScreeningShortlist ScreeningDecision = "shortlist"
	ScreeningReject    ScreeningDecision = "reject"
)

func (d ScreeningDecision) Valid() bool {
	return d == ScreeningShortlist || d == ScreeningReject
}

// RoundDecision is the outcome of one interview round.
type RoundDecision string

const (
	RoundNext   RoundDecision = "next_round"
	RoundReject RoundDecision = "reject"
	RoundOffer  RoundDecision = "offer"
)

func (d RoundDecision) Valid() bool {
	return d == RoundNext || d == RoundReject || d == RoundOffer
}

// CandidateStatus labels where a candidate is in the interview pipeline.
type CandidateStatus string

const (
	StatusPendingFirstRound CandidateStatus = "pending_first_round"
	StatusNextRoundPending  CandidateStatus = "next_round_pending"
	StatusWaitingFeedback   CandidateStatus = "waiting_feedback"
	StatusRejected          CandidateStatus = "rejected"
	StatusOfferMade         CandidateStatus = "offer_made"
)

// Terminal reports whether no further transition happens for this status.
func (s CandidateStatus) Terminal() bool {
	return s == StatusRejected || s == StatusOfferMade
}

// ScreeningResult records the screening verdict for one resume.
type ScreeningResult struct {
	CandidateID string            `json:"candidate_id"`
	Score       float64           `json:"score"`
	Decision    ScreeningDecision `json:"decision"`
	Reasons     string            `json:"reasons,omitempty"`
}

// Passed reports whether the candidate advanced past screening.
func (r ScreeningResult) Passed() bool {
	return r.Decision == ScreeningShortlist
}

// InterviewRound is one completed evaluation event. Rounds are append-only
// and never modified after they are recorded.
type InterviewRound struct {
	Number   int           `json:"round_number"`
	Slot     string        `json:"slot"`
	Feedback string        `json:"feedback,omitempty"`
	Decision RoundDecision `json:"decision"`
}

// CandidateInterview tracks one shortlisted candidate through interview
// rounds. PendingSlot holds the booked slot for the round currently awaiting
// feedback; completed rounds live in History in chronological order.
type CandidateInterview struct {
	CandidateID  string           `json:"candidate_id"`
	Status       CandidateStatus  `json:"status"`
	CurrentRound int              `json:"current_round"`
	PendingSlot  string           `json:"pending_slot,omitempty"`
	History      []InterviewRound `json:"history"`
}

// Terminal reports whether the candidate reached a final decision.
func (c *CandidateInterview) Terminal() bool {
	return c.Status.Terminal()
}

// WorkflowState is the whole unit of work for one job requisition. It is
// persisted as a single record and replaced atomically on every checkpoint.
type WorkflowState struct {
	JobID            string               `json:"job_id"`
	Role             string               `json:"role"`
	JobDescription   string               `json:"job_description"`
	Resumes          []string             `json:"resumes"`
	Stage            Stage                `json:"stage"`
	// No omitempty on the slices: empty-but-present is the marker that the
	// stage ran, and it must survive the JSON round trip through the store.
	ScreeningResults []ScreeningResult    `json:"screening_results"`
	Interviews       []CandidateInterview `json:"interviews"`
	Report           string               `json:"report,omitempty"`
	Version          int64                `json:"version"`
	Created          int64                `json:"created"`
	Updated          int64                `json:"updated"`
}

// NewWorkflowState creates the initial state for a submitted requisition.
func NewWorkflowState(jobID, role, description string, resumes []string) *WorkflowState {
	now := time.Now().UTC().UnixMilli()
	return &WorkflowState{
		JobID:          jobID,
		Role:           role,
		JobDescription: description,
		Resumes:        resumes,
		Stage:          StageScreening,
		Created:        now,
		Updated:        now,
	}
}

// Complete reports whether the workflow reached its terminal stage.
func (s *WorkflowState) Complete() bool {
	return s.Stage == StageDone && s.Report != ""
}

// Screened reports whether the screening stage already ran. An empty result
// slice still counts once screening completed (zero resumes is a valid run).
func (s *WorkflowState) Screened() bool {
	return s.ScreeningResults != nil
}

// InterviewsInitialized reports whether the interview set was built from the
// screening results.
func (s *WorkflowState) InterviewsInitialized() bool {
	return s.Interviews != nil
}

// AllCandidatesTerminal reports whether every candidate reached a final
// per-candidate decision. True for an empty interview set: the fan-in join is
// trivially satisfied.
func (s *WorkflowState) AllCandidatesTerminal() bool {
	for i := range s.Interviews {
		if !s.Interviews[i].Terminal() {
			return false
		}
	}
	return true
}

// FindInterview returns the interview entry for a candidate, or nil.
func (s *WorkflowState) FindInterview(candidateID string) *CandidateInterview {
	for i := range s.Interviews {
		if s.Interviews[i].CandidateID == candidateID {
			return &s.Interviews[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the state. Stages mutate the copy so a failed
// stage leaves the caller's snapshot untouched.
func (s *WorkflowState) Clone() *WorkflowState {
	cp := *s
	// make+copy rather than append: appending zero elements to nil yields
	// nil, which would erase the empty-but-present stage markers.
	if s.Resumes != nil {
		cp.Resumes = make([]string, len(s.Resumes))
		copy(cp.Resumes, s.Resumes)
	}
	if s.ScreeningResults != nil {
		cp.ScreeningResults = make([]ScreeningResult, len(s.ScreeningResults))
		copy(cp.ScreeningResults, s.ScreeningResults)
	}
	if s.Interviews != nil {
		cp.Interviews = make([]CandidateInterview, len(s.Interviews))
		for i := range s.Interviews {
			ci := s.Interviews[i]
			if ci.History != nil {
				ci.History = make([]InterviewRound, len(ci.History))
				copy(ci.History, s.Interviews[i].History)
			}
			cp.Interviews[i] = ci
		}
	}
	return &cp
}

// HRUser is an authenticated user of the HTTP surface.
type HRUser struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	Updated      int64  `json:"updated" db:"updated"`
	PasswordHash string `json:"password_hash,omitempty" db:"password_hash"`
}

// PanelSlot is one bookable interview slot for a role.
type PanelSlot struct {
	ID       int64  `json:"id" db:"id"`
	Role     string `json:"role" db:"role"`
	Slot     string `json:"slot" db:"slot"`
	BookedBy string `json:"booked_by,omitempty" db:"booked_by"`
}

// StateSnapshot is one persisted checkpoint of a workflow state.
type StateSnapshot struct {
	ID        int64  `json:"id" db:"id"`
	JobID     string `json:"job_id" db:"job_id"`
	Stage     Stage  `json:"stage" db:"stage"`
	StateJSON string `json:"state_json" db:"state_json"`
	Version   int64  `json:"version" db:"version"`
	Created   int64  `json:"created" db:"created"`
}

// Schema is a versioned JSON Schema used to validate model output.
type Schema struct {
	ID          int64  `json:"id" db:"id"`
	Version     string `json:"version" db:"version"`
	Description string `json:"description,omitempty" db:"description"`
	SchemaJSON  string `json:"schema_json" db:"schema_json"`
	Created     int64  `json:"created" db:"created"`
	Updated     int64  `json:"updated" db:"updated"`
}

// Template is a versioned prompt template.
type Template struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Version     string  `json:"version" db:"version"`
	TemplateTxt string  `json:"template_text" db:"template_text"`
	SchemaVer   *string `json:"schema_version,omitempty" db:"schema_version"`
	Metadata    *string `json:"metadata,omitempty" db:"metadata"`
	Created     int64   `json:"created" db:"created"`
	Updated     int64   `json:"updated" db:"updated"`
}

// BackgroundJob is a queued unit of asynchronous work.
type BackgroundJob struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	Priority    int             `json:"priority"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	NextTryAt   *time.Time      `json:"next_try_at,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
	Created     time.Time       `json:"created"`
	Updated     time.Time       `json:"updated"`
}

package workflow

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/hirepipe/hirepipe/pkg/models"
)

// Screener decides pass or fail for one resume against the job description.
type Screener interface {
	Screen(ctx context.Context, jobDescription, resume string) (models.ScreeningResult, error)
}

// SlotBooker reserves a panel slot for a candidate's next round.
type SlotBooker interface {
	Book(ctx context.Context, role, candidateID string) (string, error)
}

// Evaluator produces feedback and a decision for the round a candidate is
// currently waiting on.
type Evaluator interface {
	EvaluateRound(ctx context.Context, jobDescription string, cand *models.CandidateInterview) (string, models.RoundDecision, error)
}

// Reporter writes the final HR summary for a finished pipeline.
type Reporter interface {
	GenerateReport(ctx context.Context, state *models.WorkflowState) (string, error)
}

// Runner executes one named stage against a state. Each run is a pure
// transformation: the input state is cloned, the clone is mutated, and the
// clone is validated before it is returned. A failed run leaves the input
// untouched.
type Runner struct {
	screener  Screener
	booker    SlotBooker
	evaluator Evaluator
	reporter  Reporter
	maxRounds int
	logger    *slog.Logger
}

func NewRunner(screener Screener, booker SlotBooker, evaluator Evaluator, reporter Reporter, maxRounds int, logger *slog.Logger) *Runner {
	if maxRounds <= 0 {
		maxRounds = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		screener:  screener,
		booker:    booker,
		evaluator: evaluator,
		reporter:  reporter,
		maxRounds: maxRounds,
		logger:    logger,
	}
}

// Run executes stage against state and returns the transformed copy.
func (r *Runner) Run(ctx context.Context, stage models.Stage, state *models.WorkflowState) (*models.WorkflowState, error) {
	var fn func(context.Context, *models.WorkflowState) error
	switch stage {
	case models.StageScreening:
		fn = r.runScreening
	case models.StageInterviewing:
		fn = r.runInterviewing
	case models.StageReporting:
		fn = r.runReporting
	default:
		return nil, fmt.Errorf("no runnable stage %q", stage)
	}

	next := state.Clone()
	if err := fn(ctx, next); err != nil {
		return nil, err
	}
	if err := models.ValidateState(next); err != nil {
		return nil, &InvariantViolation{Err: err}
	}
	return next, nil
}

// runScreening evaluates every resume and appends one result per resume.
// Candidate ids are assigned positionally. Zero resumes is a valid run: the
// result set is recorded empty and the workflow moves on.
func (r *Runner) runScreening(ctx context.Context, st *models.WorkflowState) error {
	if st.Screened() {
		return nil
	}

	results := make([]models.ScreeningResult, 0, len(st.Resumes))
	for i, resume := range st.Resumes {
		res, err := r.screener.Screen(ctx, st.JobDescription, resume)
		if err != nil {
			return fmt.Errorf("screen resume %d: %w", i+1, err)
		}
		res.CandidateID = fmt.Sprintf("cand-%d", i+1)
		results = append(results, res)

		r.logger.Info("resume screened",
			slog.String("job_id", st.JobID),
			slog.String("candidate_id", res.CandidateID),
			slog.Float64("score", res.Score),
			slog.String("decision", string(res.Decision)))
	}

	st.ScreeningResults = results
	st.Stage = models.StageInterviewing
	return nil
}

// runInterviewing performs one routing pass: book a slot for every candidate
// waiting to be scheduled, then collect feedback for every candidate waiting
// on a round. The engine repeats passes, checkpointing each, until all
// candidates reach a terminal decision; then the workflow advances to
// Reporting.
func (r *Runner) runInterviewing(ctx context.Context, st *models.WorkflowState) error {
	if !st.Screened() {
		return fmt.Errorf("interviewing requires screening results")
	}

	if !st.InterviewsInitialized() {
		interviews := make([]models.CandidateInterview, 0)
		for _, res := range st.ScreeningResults {
			if !res.Passed() {
				continue
			}
			interviews = append(interviews, models.CandidateInterview{
				CandidateID:  res.CandidateID,
				Status:       models.StatusPendingFirstRound,
				CurrentRound: 1,
			})
		}
		st.Interviews = interviews
	}

	// schedule phase
	for i := range st.Interviews {
		c := &st.Interviews[i]
		if c.Terminal() || c.Status == models.StatusWaitingFeedback {
			continue
		}
		slot, err := r.booker.Book(ctx, st.Role, c.CandidateID)
		if err != nil {
			return fmt.Errorf("schedule round %d for %s: %w", c.CurrentRound, c.CandidateID, err)
		}
		c.PendingSlot = slot
		c.Status = models.StatusWaitingFeedback
	}

	// collect phase
	for i := range st.Interviews {
		c := &st.Interviews[i]
		if c.Status != models.StatusWaitingFeedback {
			continue
		}
		feedback, decision, err := r.evaluator.EvaluateRound(ctx, st.JobDescription, c)
		if err != nil {
			return fmt.Errorf("collect round %d for %s: %w", c.CurrentRound, c.CandidateID, err)
		}
		if decision == models.RoundNext && c.CurrentRound >= r.maxRounds {
			// round cap reached, close the branch
			decision = models.RoundReject
			r.logger.Info("round cap reached, rejecting",
				slog.String("job_id", st.JobID),
				slog.String("candidate_id", c.CandidateID),
				slog.Int("round", c.CurrentRound))
		}

		c.History = append(c.History, models.InterviewRound{
			Number:   c.CurrentRound,
			Slot:     c.PendingSlot,
			Feedback: feedback,
			Decision: decision,
		})
		c.PendingSlot = ""

		switch decision {
		case models.RoundNext:
			c.Status = models.StatusNextRoundPending
			c.CurrentRound++
		case models.RoundReject:
			c.Status = models.StatusRejected
		case models.RoundOffer:
			c.Status = models.StatusOfferMade
		}
	}

	// fan-in join: all branches terminal, including the empty set
	if st.AllCandidatesTerminal() {
		st.Stage = models.StageReporting
	}
	return nil
}

// runReporting writes the final report once. Re-running against a state that
// already carries a report leaves it unchanged.
func (r *Runner) runReporting(ctx context.Context, st *models.WorkflowState) error {
	if !st.Screened() {
		return fmt.Errorf("reporting requires screening results")
	}
	if !st.AllCandidatesTerminal() {
		return fmt.Errorf("reporting requires every candidate to be terminal")
	}

	if st.Report != "" {
		st.Stage = models.StageDone
		return nil
	}

	report, err := r.reporter.GenerateReport(ctx, st)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	st.Report = report
	st.Stage = models.StageDone
	return nil
}

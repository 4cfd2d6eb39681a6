package models

import "fmt"

// ValidateInterview checks the per-candidate invariants: round numbers are
// strictly increasing from 1, decisions come from the closed enum, and
// current_round equals len(history)+1 unless the candidate is terminal. A
// terminal candidate's current_round stays frozen at the last round number.
func ValidateInterview(c *CandidateInterview) error {
	if c.CandidateID == "" {
		return fmt.Errorf("interview entry has empty candidate id")
	}
	for i, r := range c.History {
		if r.Number != i+1 {
			return fmt.Errorf("candidate %s: round %d recorded with number %d", c.CandidateID, i+1, r.Number)
		}
		if !r.Decision.Valid() {
			return fmt.Errorf("candidate %s: round %d has invalid decision %q", c.CandidateID, r.Number, r.Decision)
		}
	}
	if c.Terminal() {
		if len(c.History) == 0 {
			return fmt.Errorf("candidate %s: terminal status %q with no recorded rounds", c.CandidateID, c.Status)
		}
		if c.CurrentRound != len(c.History) {
			return fmt.Errorf("candidate %s: terminal current_round %d, want %d", c.CandidateID, c.CurrentRound, len(c.History))
		}
		last := c.History[len(c.History)-1].Decision
		if last == RoundNext {
			return fmt.Errorf("candidate %s: terminal status %q but last decision is %q", c.CandidateID, c.Status, last)
		}
		return nil
	}
	if c.CurrentRound != len(c.History)+1 {
		return fmt.Errorf("candidate %s: current_round %d, want %d", c.CandidateID, c.CurrentRound, len(c.History)+1)
	}
	return nil
}

// ValidateState checks the whole-record invariants: every interviewed
// candidate has a passed screening result, candidate ids are unique, and
// every interview entry passes ValidateInterview. Stages call this at their
// boundaries; a failure is fatal for the run.
func ValidateState(s *WorkflowState) error {
	if s.JobID == "" {
		return fmt.Errorf("state has empty job id")
	}
	if !s.Stage.Valid() {
		return fmt.Errorf("job %s: unknown stage %q", s.JobID, s.Stage)
	}

	passed := make(map[string]bool, len(s.ScreeningResults))
	for _, r := range s.ScreeningResults {
		if r.CandidateID == "" {
			return fmt.Errorf("job %s: screening result with empty candidate id", s.JobID)
		}
		if !r.Decision.Valid() {
			return fmt.Errorf("job %s: candidate %s has invalid screening decision %q", s.JobID, r.CandidateID, r.Decision)
		}
		passed[r.CandidateID] = r.Passed()
	}

	seen := make(map[string]bool, len(s.Interviews))
	for i := range s.Interviews {
		c := &s.Interviews[i]
		if seen[c.CandidateID] {
			return fmt.Errorf("job %s: duplicate candidate %s in interview set", s.JobID, c.CandidateID)
		}
		seen[c.CandidateID] = true
		if !passed[c.CandidateID] {
			return fmt.Errorf("job %s: candidate %s interviewed without a passed screening result", s.JobID, c.CandidateID)
		}
		if err := ValidateInterview(c); err != nil {
			return fmt.Errorf("job %s: %w", s.JobID, err)
		}
	}

	if s.Stage == StageDone && s.Report == "" {
		return fmt.Errorf("job %s: done stage with empty report", s.JobID)
	}
	return nil
}

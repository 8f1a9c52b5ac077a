package attempt

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

// Phase says which gate the guard is asked about.
type Phase string

const (
	PhaseStart  Phase = "start"
	PhaseSubmit Phase = "submit"
)

// Decision is the outcome of a guard check. Cause is ErrAlreadyBlocked (as a
// *BlockedError) or ErrDuplicateSubmission when Allowed is false.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Cause   error  `json:"-"`
}

// Err returns nil for an allowed decision and the cause otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return d.Cause
}

// Guard enforces at most one accepted submission per candidate per exam and
// refuses blocked candidates. It reads then lets the caller act; the unique
// indexes of the submission store close the remaining race window.
type Guard struct {
	registry    *Registry
	submissions SubmissionStore
}

// NewGuard creates a Guard.
func NewGuard(registry *Registry, submissions SubmissionStore) *Guard {
	return &Guard{registry: registry, submissions: submissions}
}

// CanAttemptOrSubmit checks the block record of the identity's phone, then
// looks for an existing submission by account id (when present) or phone.
// Both phases run both checks; phase selects the wording of a refusal.
func (g *Guard) CanAttemptOrSubmit(ctx context.Context, examID uuid.UUID, id model.CandidateIdentity, phase Phase) (Decision, error) {
	if phase != PhaseStart && phase != PhaseSubmit {
		return Decision{}, fmt.Errorf("unknown guard phase %q", phase)
	}

	rec, err := g.registry.Active(ctx, examID, id.Phone)
	if err != nil {
		return Decision{}, fmt.Errorf("%s: find block: %w", phase, err)
	}
	if rec != nil {
		return Decision{Reason: rec.Reason, Cause: &BlockedError{Reason: rec.Reason}}, nil
	}

	existing, err := g.submissions.FindSubmission(ctx, examID, KeyFor(id))
	if err != nil {
		return Decision{}, fmt.Errorf("%s: find submission: %w", phase, err)
	}
	if existing != nil {
		return Decision{Reason: duplicateReason(phase, existing), Cause: ErrDuplicateSubmission}, nil
	}
	return Decision{Allowed: true}, nil
}

func duplicateReason(phase Phase, existing *model.Submission) string {
	at := existing.SubmittedAt.UTC().Format("2006-01-02 15:04:05 MST")
	if phase == PhaseStart {
		return fmt.Sprintf("already submitted at %s, a second attempt is not allowed", at)
	}
	return fmt.Sprintf("a submission was already recorded at %s", at)
}

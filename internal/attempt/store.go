// Package attempt implements the timed exam attempt engine: the clock, the
// violation monitor, the block registry, the submission guard and the state
// machine that drives one candidate session through them.
package attempt

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

// ExamStore loads exam definitions. Read-only to the engine.
type ExamStore interface {
	GetExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error)
}

// AttemptStore persists the single start timestamp of a candidate's attempt.
// GetAttempt returns (nil, nil) when no attempt exists. CreateAttempt returns
// ErrAttemptExists when another writer won the race.
type AttemptStore interface {
	GetAttempt(ctx context.Context, examID uuid.UUID, phone string) (*model.Attempt, error)
	CreateAttempt(ctx context.Context, examID uuid.UUID, phone string, startedAt time.Time) error
	UpdateAttemptStart(ctx context.Context, examID uuid.UUID, phone string, startedAt time.Time) error
}

// BlockStore persists block records. GetBlock returns (nil, nil) when none exists.
type BlockStore interface {
	GetBlock(ctx context.Context, examID uuid.UUID, phone string) (*model.BlockRecord, error)
	UpsertBlock(ctx context.Context, examID uuid.UUID, phone string, blocked bool, reason string, count int) error
}

// SubmissionKey selects a submission by account id when set, else by phone.
type SubmissionKey struct {
	AccountID string
	Phone     string
}

// KeyFor builds the dedup key of an identity.
func KeyFor(id model.CandidateIdentity) SubmissionKey {
	return SubmissionKey{AccountID: id.AccountID, Phone: id.Phone}
}

// SubmissionStore persists final submissions. FindSubmission returns
// (nil, nil) when none exists. CreateSubmission returns
// ErrDuplicateSubmission when a uniqueness constraint rejects the row.
type SubmissionStore interface {
	FindSubmission(ctx context.Context, examID uuid.UUID, key SubmissionKey) (*model.Submission, error)
	CreateSubmission(ctx context.Context, sub *model.Submission) error
}

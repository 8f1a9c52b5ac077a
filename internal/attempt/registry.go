package attempt

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

// Registry owns the per-exam, per-phone block records.
type Registry struct {
	store BlockStore
}

// NewRegistry creates a Registry over store.
func NewRegistry(store BlockStore) *Registry {
	return &Registry{store: store}
}

// BlockReason renders the stored reason for a block triggered by kind.
func BlockReason(kind ViolationKind, count int) string {
	switch kind {
	case ViolationFullscreen:
		return fmt.Sprintf("Blocked after %d fullscreen exits during the exam", count)
	default:
		return fmt.Sprintf("Blocked after %d tab switches during the exam", count)
	}
}

// Active returns the block record of (examID, phone) when it currently
// blocks, nil otherwise.
func (r *Registry) Active(ctx context.Context, examID uuid.UUID, phone string) (*model.BlockRecord, error) {
	rec, err := r.store.GetBlock(ctx, examID, phone)
	if err != nil {
		return nil, fmt.Errorf("get block: %w", err)
	}
	if rec == nil || !rec.Blocked {
		return nil, nil
	}
	return rec, nil
}

// Block records a block caused by count violations of kind.
func (r *Registry) Block(ctx context.Context, examID uuid.UUID, phone string, kind ViolationKind, count int) (model.BlockRecord, error) {
	rec := model.BlockRecord{
		ExamID:         examID,
		Phone:          phone,
		Blocked:        true,
		Reason:         BlockReason(kind, count),
		ViolationCount: count,
	}
	if err := r.store.UpsertBlock(ctx, examID, phone, true, rec.Reason, count); err != nil {
		return rec, writeFailure("upsert block", err)
	}
	return rec, nil
}

// Unblock lifts an existing block. The violation count is kept for the audit
// trail; the candidate must reload to start again.
func (r *Registry) Unblock(ctx context.Context, examID uuid.UUID, phone string, note string) error {
	rec, err := r.store.GetBlock(ctx, examID, phone)
	if err != nil {
		return fmt.Errorf("get block: %w", err)
	}
	if rec == nil {
		return ErrBlockNotFound
	}
	if !rec.Blocked {
		return nil
	}
	reason := "Unblocked by administrator"
	if note != "" {
		reason = reason + ": " + note
	}
	if err := r.store.UpsertBlock(ctx, examID, phone, false, reason, rec.ViolationCount); err != nil {
		return writeFailure("upsert block", err)
	}
	return nil
}

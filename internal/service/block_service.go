package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/attempt"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/repository"
)

// BlockService exposes the block registry to administrators.
type BlockService struct {
	blockRepo *repository.BlockRepository
	registry  *attempt.Registry
	log       zerolog.Logger
}

// NewBlockService creates a new BlockService.
func NewBlockService(blockRepo *repository.BlockRepository, registry *attempt.Registry, log zerolog.Logger) *BlockService {
	return &BlockService{
		blockRepo: blockRepo,
		registry:  registry,
		log:       log.With().Str("component", "block_service").Logger(),
	}
}

// List returns the block records of an exam.
func (s *BlockService) List(ctx context.Context, examID uuid.UUID, onlyBlocked bool) ([]model.BlockRecord, error) {
	return s.blockRepo.ListByExam(ctx, examID, onlyBlocked)
}

// Unblock lifts the block of phone. The phone is normalized the same way the
// candidate's was when the block was written.
func (s *BlockService) Unblock(ctx context.Context, examID uuid.UUID, phone, note string, adminID string) error {
	phone = model.NormalizePhone(phone)
	if len(phone) < model.MinPhoneDigits {
		return attempt.ErrInvalidIdentity
	}
	if err := s.registry.Unblock(ctx, examID, phone, note); err != nil {
		return err
	}
	s.log.Info().
		Str("exam_id", examID.String()).
		Str("phone", phone).
		Str("admin_id", adminID).
		Msg("Candidate unblocked")
	return nil
}

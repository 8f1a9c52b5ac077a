package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/attempt"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/config"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

// ErrExamNotFound is returned when an exam id does not exist.
var ErrExamNotFound = errors.New("exam not found")

// ExamService serves exam definitions through a Redis read-through cache.
// The cached value is the normalized exam including answer keys; candidates
// only ever see Paper().
type ExamService struct {
	examRepo attempt.ExamStore
	rdb      *redis.Client
	ttl      time.Duration
	log      zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(examRepo attempt.ExamStore, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *ExamService {
	return &ExamService{
		examRepo: examRepo,
		rdb:      rdb,
		ttl:      ttl,
		log:      log.With().Str("component", "exam_service").Logger(),
	}
}

// GetExam returns the normalized exam. Cache failures fall back to the
// database.
func (s *ExamService) GetExam(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	key := config.CacheKey.ExamPaperKey(examID.String())

	data, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var exam model.Exam
		if err := json.Unmarshal(data, &exam); err == nil {
			return &exam, nil
		}
		s.log.Warn().Str("exam_id", examID.String()).Msg("Corrupt cached exam, reloading")
	case !errors.Is(err, redis.Nil):
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Exam cache unavailable")
	}

	return s.load(ctx, examID)
}

// Paper returns the candidate-facing view of the exam.
func (s *ExamService) Paper(ctx context.Context, examID uuid.UUID) (*model.ExamPaper, error) {
	exam, err := s.GetExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	paper := exam.Paper()
	return &paper, nil
}

// RefreshCache reloads the exam from the database and overwrites the cache.
// Called after an exam is edited.
func (s *ExamService) RefreshCache(ctx context.Context, examID uuid.UUID) error {
	if _, err := s.load(ctx, examID); err != nil {
		return err
	}
	s.log.Info().Str("exam_id", examID.String()).Msg("Cache refreshed")
	return nil
}

func (s *ExamService) load(ctx context.Context, examID uuid.UUID) (*model.Exam, error) {
	exam, err := s.examRepo.GetExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}
	exam.Normalize()

	payload, err := json.Marshal(exam)
	if err != nil {
		return nil, fmt.Errorf("marshal exam: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.ExamPaperKey(examID.String()), payload, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Failed to cache exam")
	} else {
		s.log.Debug().
			Str("exam_id", examID.String()).
			Int("questions", len(exam.Questions)).
			Msg("Cache warmed")
	}
	return exam, nil
}

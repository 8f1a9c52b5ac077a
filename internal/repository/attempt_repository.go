package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/attempt"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

// AttemptRepository persists attempt start timestamps.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// GetAttempt returns the attempt of (examID, phone), or nil when none exists.
func (r *AttemptRepository) GetAttempt(ctx context.Context, examID uuid.UUID, phone string) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT exam_id, phone, started_at
		 FROM exam_attempts
		 WHERE exam_id = $1 AND phone = $2`, examID, phone,
	).Scan(&a.ExamID, &a.Phone, &a.StartedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// CreateAttempt inserts the attempt. It returns attempt.ErrAttemptExists when
// a row is already there.
func (r *AttemptRepository) CreateAttempt(ctx context.Context, examID uuid.UUID, phone string, startedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO exam_attempts (exam_id, phone, started_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (exam_id, phone) DO NOTHING`,
		examID, phone, startedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return attempt.ErrAttemptExists
	}
	return nil
}

// UpdateAttemptStart moves the start of an existing attempt.
func (r *AttemptRepository) UpdateAttemptStart(ctx context.Context, examID uuid.UUID, phone string, startedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_attempts SET started_at = $1 WHERE exam_id = $2 AND phone = $3`,
		startedAt, examID, phone)
	return err
}

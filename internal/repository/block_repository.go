package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

// BlockRepository persists candidate block records.
type BlockRepository struct {
	pool *pgxpool.Pool
}

// NewBlockRepository creates a new BlockRepository.
func NewBlockRepository(pool *pgxpool.Pool) *BlockRepository {
	return &BlockRepository{pool: pool}
}

const blockColumns = `exam_id, phone, blocked, reason, violation_count, blocked_at, unblocked_at`

func scanBlock(row pgx.Row, b *model.BlockRecord) error {
	return row.Scan(&b.ExamID, &b.Phone, &b.Blocked, &b.Reason, &b.ViolationCount, &b.BlockedAt, &b.UnblockedAt)
}

// GetBlock returns the block record of (examID, phone), or nil when none exists.
func (r *BlockRepository) GetBlock(ctx context.Context, examID uuid.UUID, phone string) (*model.BlockRecord, error) {
	b := &model.BlockRecord{}
	err := scanBlock(r.pool.QueryRow(ctx,
		`SELECT `+blockColumns+` FROM exam_blocks WHERE exam_id = $1 AND phone = $2`,
		examID, phone), b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// UpsertBlock writes the block record. Blocking stamps blocked_at and clears
// unblocked_at; unblocking stamps unblocked_at and keeps blocked_at.
func (r *BlockRepository) UpsertBlock(ctx context.Context, examID uuid.UUID, phone string, blocked bool, reason string, count int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_blocks (exam_id, phone, blocked, reason, violation_count, blocked_at, unblocked_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), CASE WHEN $3 THEN NULL ELSE NOW() END)
		 ON CONFLICT (exam_id, phone) DO UPDATE SET
		     blocked         = EXCLUDED.blocked,
		     reason          = EXCLUDED.reason,
		     violation_count = EXCLUDED.violation_count,
		     blocked_at      = CASE WHEN EXCLUDED.blocked THEN NOW() ELSE exam_blocks.blocked_at END,
		     unblocked_at    = CASE WHEN EXCLUDED.blocked THEN NULL ELSE NOW() END`,
		examID, phone, blocked, reason, count)
	return err
}

// ListByExam returns the block records of an exam, newest first. With
// onlyBlocked set, lifted blocks are left out.
func (r *BlockRepository) ListByExam(ctx context.Context, examID uuid.UUID, onlyBlocked bool) ([]model.BlockRecord, error) {
	query := `SELECT ` + blockColumns + ` FROM exam_blocks WHERE exam_id = $1`
	if onlyBlocked {
		query += ` AND blocked`
	}
	query += ` ORDER BY blocked_at DESC`

	rows, err := r.pool.Query(ctx, query, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blocks := make([]model.BlockRecord, 0)
	for rows.Next() {
		var b model.BlockRecord
		if err := scanBlock(rows, &b); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

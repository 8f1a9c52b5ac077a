package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

var violationColumns = []string{"exam_id", "phone", "kind", "count", "detail", "recorded_at"}

// ViolationRepository writes the violation audit log. Rows are never read back
// by the attempt engine; counting happens in memory.
type ViolationRepository struct {
	pool *pgxpool.Pool
}

// NewViolationRepository creates a new ViolationRepository.
func NewViolationRepository(pool *pgxpool.Pool) *ViolationRepository {
	return &ViolationRepository{pool: pool}
}

// CopyViolations bulk-inserts a batch with COPY.
func (r *ViolationRepository) CopyViolations(ctx context.Context, batch []model.ViolationEvent) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, v := range batch {
		rows = append(rows, []interface{}{v.ExamID, v.Phone, v.Kind, v.Count, v.Detail, v.RecordedAt})
	}

	_, err := r.pool.CopyFrom(ctx, pgx.Identifier{"exam_violations"}, violationColumns, pgx.CopyFromRows(rows))
	return err
}

// InsertViolation inserts a single row.
func (r *ViolationRepository) InsertViolation(ctx context.Context, v model.ViolationEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_violations (exam_id, phone, kind, count, detail, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		v.ExamID, v.Phone, v.Kind, v.Count, v.Detail, v.RecordedAt,
	)
	return err
}

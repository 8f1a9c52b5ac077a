package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LiveAttempt is an attempt that has started but has no submission yet.
type LiveAttempt struct {
	Phone     string    `json:"phone"`
	StartedAt time.Time `json:"started_at"`
}

// MonitorRepository provides data access for the live exam monitor.
type MonitorRepository struct {
	pool *pgxpool.Pool
}

// NewMonitorRepository creates a new MonitorRepository.
func NewMonitorRepository(pool *pgxpool.Pool) *MonitorRepository {
	return &MonitorRepository{pool: pool}
}

// GetLiveAttempts returns attempts of the exam without a submission for the
// same phone.
func (r *MonitorRepository) GetLiveAttempts(ctx context.Context, examID uuid.UUID) ([]LiveAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.phone, a.started_at
		 FROM exam_attempts a
		 WHERE a.exam_id = $1
		   AND NOT EXISTS (
		       SELECT 1 FROM exam_submissions s
		       WHERE s.exam_id = a.exam_id AND s.phone = a.phone)
		 ORDER BY a.started_at ASC`,
		examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	live := make([]LiveAttempt, 0)
	for rows.Next() {
		var a LiveAttempt
		if err := rows.Scan(&a.Phone, &a.StartedAt); err != nil {
			return nil, err
		}
		live = append(live, a)
	}
	return live, rows.Err()
}

// GetViolationCounts returns, per phone, the number of audited violations of
// each kind for the exam.
func (r *MonitorRepository) GetViolationCounts(ctx context.Context, examID uuid.UUID) (map[string]map[string]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT phone, kind, COUNT(*)
		 FROM exam_violations
		 WHERE exam_id = $1
		 GROUP BY phone, kind`,
		examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]map[string]int64)
	for rows.Next() {
		var (
			phone, kind string
			n           int64
		)
		if err := rows.Scan(&phone, &kind, &n); err != nil {
			return nil, err
		}
		if counts[phone] == nil {
			counts[phone] = make(map[string]int64, 2)
		}
		counts[phone][kind] = n
	}
	return counts, rows.Err()
}

// CountSubmissions returns how many submissions the exam has.
func (r *MonitorRepository) CountSubmissions(ctx context.Context, examID uuid.UUID) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM exam_submissions WHERE exam_id = $1`, examID).Scan(&n)
	return n, err
}

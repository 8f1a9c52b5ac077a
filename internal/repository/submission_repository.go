package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/attempt"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

// pgUniqueViolation is the SQLSTATE of a unique constraint violation.
const pgUniqueViolation = "23505"

// SubmissionSummary is one row of the admin submission list.
type SubmissionSummary struct {
	ID            uuid.UUID `json:"id"`
	AccountID     *string   `json:"account_id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	SubmittedAt   time.Time `json:"submitted_at"`
	Trigger       string    `json:"trigger"`
	TotalScore    float64   `json:"total_score"`
	MaxTotalScore float64   `json:"max_total_score"`
	Percentage    int       `json:"percentage"`
}

// SubmissionRepository persists final submissions.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

const submissionColumns = `id, exam_id, account_id, name, phone, submitted_at, trigger, answers,
	mcq_score, section_scores, coding_score, total_score, max_total_score, percentage, run_verdict_summary`

// FindSubmission looks a submission up by account id when the key has one,
// otherwise by phone across every submission for the exam, including those
// made while signed in.
func (r *SubmissionRepository) FindSubmission(ctx context.Context, examID uuid.UUID, key attempt.SubmissionKey) (*model.Submission, error) {
	query, args := findSubmissionQuery(examID, key)
	row := r.pool.QueryRow(ctx, query, args...)

	sub, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

func findSubmissionQuery(examID uuid.UUID, key attempt.SubmissionKey) (string, []any) {
	if key.AccountID != "" {
		return `SELECT ` + submissionColumns + ` FROM exam_submissions
			WHERE exam_id = $1 AND account_id = $2`, []any{examID, key.AccountID}
	}
	return `SELECT ` + submissionColumns + ` FROM exam_submissions
		WHERE exam_id = $1 AND phone = $2
		ORDER BY submitted_at ASC LIMIT 1`, []any{examID, key.Phone}
}

// CreateSubmission inserts sub. A unique violation maps to
// attempt.ErrDuplicateSubmission.
func (r *SubmissionRepository) CreateSubmission(ctx context.Context, sub *model.Submission) error {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	mcq, err := json.Marshal(sub.MCQScore)
	if err != nil {
		return fmt.Errorf("marshal mcq score: %w", err)
	}
	sections, err := json.Marshal(sub.SectionScores)
	if err != nil {
		return fmt.Errorf("marshal section scores: %w", err)
	}
	runs, err := json.Marshal(sub.RunVerdictSummary)
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}

	var accountID *string
	if sub.Identity.AccountID != "" {
		accountID = &sub.Identity.AccountID
	}

	query := `INSERT INTO exam_submissions (` + submissionColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	if accountID == nil {
		// The phone index only covers anonymous rows; an earlier signed-in
		// submission with the same phone must also block this insert.
		query = `INSERT INTO exam_submissions (` + submissionColumns + `)
		 SELECT $1::uuid, $2::uuid, $3::varchar, $4::varchar, $5::varchar, $6::timestamptz, $7::varchar,
		        $8::jsonb, $9::jsonb, $10::jsonb, $11::float8, $12::float8, $13::float8, $14::int, $15::jsonb
		 WHERE NOT EXISTS (SELECT 1 FROM exam_submissions WHERE exam_id = $2 AND phone = $5)`
	}

	tag, err := r.pool.Exec(ctx, query,
		sub.ID, sub.ExamID, accountID, sub.Identity.Name, sub.Identity.Phone, sub.SubmittedAt, sub.Trigger,
		answers, mcq, sections, sub.CodingScore, sub.TotalScore, sub.MaxTotalScore, sub.Percentage, runs,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return attempt.ErrDuplicateSubmission
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return attempt.ErrDuplicateSubmission
	}
	return nil
}

// ListByExam returns a page of submissions, best score first.
func (r *SubmissionRepository) ListByExam(ctx context.Context, examID uuid.UUID, page, perPage int) ([]SubmissionSummary, int64, error) {
	offset := (page - 1) * perPage

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_submissions WHERE exam_id = $1`, examID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, account_id, name, phone, submitted_at, trigger, total_score, max_total_score, percentage
		 FROM exam_submissions
		 WHERE exam_id = $1
		 ORDER BY percentage DESC, submitted_at ASC
		 LIMIT $2 OFFSET $3`, examID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results := make([]SubmissionSummary, 0, perPage)
	for rows.Next() {
		var s SubmissionSummary
		if err := rows.Scan(&s.ID, &s.AccountID, &s.Name, &s.Phone, &s.SubmittedAt, &s.Trigger,
			&s.TotalScore, &s.MaxTotalScore, &s.Percentage); err != nil {
			return nil, 0, err
		}
		results = append(results, s)
	}
	return results, total, rows.Err()
}

func scanSubmission(row pgx.Row) (*model.Submission, error) {
	var (
		s                            model.Submission
		accountID                    *string
		answers, mcq, sections, runs []byte
	)
	err := row.Scan(&s.ID, &s.ExamID, &accountID, &s.Identity.Name, &s.Identity.Phone, &s.SubmittedAt, &s.Trigger,
		&answers, &mcq, &sections, &s.CodingScore, &s.TotalScore, &s.MaxTotalScore, &s.Percentage, &runs)
	if err != nil {
		return nil, err
	}
	if accountID != nil {
		s.Identity.AccountID = *accountID
	}
	for _, f := range []struct {
		raw  []byte
		into any
	}{
		{answers, &s.Answers},
		{mcq, &s.MCQScore},
		{sections, &s.SectionScores},
		{runs, &s.RunVerdictSummary},
	} {
		if err := json.Unmarshal(f.raw, f.into); err != nil {
			return nil, fmt.Errorf("decode submission %s: %w", s.ID, err)
		}
	}
	return &s, nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

// ExamRepository reads exam definitions. Exams are authored elsewhere; this
// service never writes them.
type ExamRepository struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool, log zerolog.Logger) *ExamRepository {
	return &ExamRepository{pool: pool, log: log.With().Str("component", "exam_repository").Logger()}
}

// maxQuestionPosition bounds the position column so a corrupt row cannot
// allocate an absurd question slice.
const maxQuestionPosition = 1000

// GetExam loads an exam with its questions. The position column is the
// question index. Gaps become empty descriptive questions so that later
// indices keep their meaning, and a field of a question body that cannot be
// decoded is treated as empty. It returns (nil, nil) when the exam does not
// exist.
func (r *ExamRepository) GetExam(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	var sections []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, duration_minutes, sections, created_at, updated_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.DurationMinutes, &sections, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(sections, &e.Sections); err != nil {
		r.log.Warn().Err(err).Str("exam_id", id.String()).Msg("Malformed sections, treating as empty")
		e.Sections = nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT position, question_type, body
		 FROM exam_questions
		 WHERE exam_id = $1
		 ORDER BY position ASC`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positioned []positionedQuestion
	for rows.Next() {
		var (
			position int
			qType    string
			body     []byte
		)
		if err := rows.Scan(&position, &qType, &body); err != nil {
			return nil, err
		}
		log := r.log.With().Str("exam_id", id.String()).Int("position", position).Logger()
		positioned = append(positioned, positionedQuestion{
			position: position,
			question: decodeQuestion(model.QuestionType(qType), body, func(field string, err error) {
				log.Warn().Err(err).Str("field", field).Msg("Malformed question field, treating as empty")
			}),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	e.Questions = assembleQuestions(positioned, func(position int, reason string) {
		r.log.Warn().Str("exam_id", id.String()).Int("position", position).Msg(reason)
	})
	e.Normalize()
	return e, nil
}

type positionedQuestion struct {
	position int
	question model.Question
}

// assembleQuestions places each question at its position. Duplicate and out
// of range positions are dropped; missing positions are filled with empty
// descriptive questions that score nothing.
func assembleQuestions(in []positionedQuestion, warn func(position int, reason string)) []model.Question {
	size := 0
	for _, pq := range in {
		if pq.position >= 0 && pq.position <= maxQuestionPosition && pq.position+1 > size {
			size = pq.position + 1
		}
	}

	out := make([]model.Question, size)
	filled := make([]bool, size)
	for _, pq := range in {
		switch {
		case pq.position < 0 || pq.position > maxQuestionPosition:
			warn(pq.position, "Question position out of range, skipping")
		case filled[pq.position]:
			warn(pq.position, "Duplicate question position, keeping the first")
		default:
			out[pq.position] = pq.question
			filled[pq.position] = true
		}
	}
	for i := range out {
		if !filled[i] {
			warn(i, "Missing question position, filling with an empty question")
			out[i] = model.Question{Type: model.QuestionTypeDescriptive}
		}
	}
	return out
}

// decodeQuestion decodes a question body field by field. A field that does
// not decode is reported through onErr and left empty; the rest of the
// question survives. A body that is not a JSON object yields an empty
// question of qType.
func decodeQuestion(qType model.QuestionType, body []byte, onErr func(field string, err error)) model.Question {
	q := model.Question{Type: qType}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		onErr("body", err)
		return q
	}

	fields := []struct {
		name string
		dst  any
	}{
		{"text", &q.Text},
		{"section", &q.Section},
		{"options", &q.Options},
		{"correct_answers", &q.CorrectAnswers},
		{"correct_answer", &q.CorrectAnswer},
		{"multi_select", &q.MultiSelect},
		{"max_score", &q.MaxScore},
		{"test_cases", &q.TestCases},
		{"language", &q.Language},
	}
	for _, f := range fields {
		value, ok := raw[f.name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, f.dst); err != nil {
			onErr(f.name, err)
			resetField(f.dst)
		}
	}
	return q
}

// resetField zeroes dst after a failed decode, which may have written part
// of a value.
func resetField(dst any) {
	switch v := dst.(type) {
	case *string:
		*v = ""
	case *[]string:
		*v = nil
	case *[]int:
		*v = nil
	case **int:
		*v = nil
	case **bool:
		*v = nil
	case *float64:
		*v = 0
	case *[]model.TestCase:
		*v = nil
	}
}

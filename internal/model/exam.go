package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType tags the Question union.
type QuestionType string

const (
	QuestionTypeMCQ         QuestionType = "mcq"
	QuestionTypeDescriptive QuestionType = "descriptive"
	QuestionTypeCoding      QuestionType = "coding"
)

// SelectionMode says whether an MCQ takes one index or a set of indices.
type SelectionMode string

const (
	SelectionSingle   SelectionMode = "SINGLE"
	SelectionMultiple SelectionMode = "MULTIPLE"
)

// DefaultCodingMaxScore applies to coding questions authored without a max score.
const DefaultCodingMaxScore = 10.0

// DefaultCodingLanguage is used when neither the question nor the answer names one.
const DefaultCodingLanguage = "python"

// TestCase is one author-supplied input/expected-output pair of a coding question.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// Question is a tagged union over mcq, descriptive and coding questions.
// Its position in Exam.Questions is its permanent index.
type Question struct {
	Type    QuestionType `json:"type"`
	Text    string       `json:"text"`
	Section string       `json:"section,omitempty"`

	// mcq
	Options        []string      `json:"options,omitempty"`
	CorrectAnswers []int         `json:"correct_answers,omitempty"`
	CorrectAnswer  *int          `json:"correct_answer,omitempty"` // legacy scalar
	MultiSelect    *bool         `json:"multi_select,omitempty"`
	SelectionMode  SelectionMode `json:"selection_mode,omitempty"`

	// descriptive, coding
	MaxScore float64 `json:"max_score,omitempty"`

	// coding
	TestCases []TestCase `json:"test_cases,omitempty"`
	Language  string     `json:"language,omitempty"`
}

// Mode returns the derived selection mode, deriving it on the fly when the
// question was never normalized.
func (q *Question) Mode() SelectionMode {
	if q.SelectionMode != "" {
		return q.SelectionMode
	}
	return deriveSelectionMode(q)
}

// CodingMaxScore returns the declared max score or the default of 10.
func (q *Question) CodingMaxScore() float64 {
	if q.MaxScore > 0 {
		return q.MaxScore
	}
	return DefaultCodingMaxScore
}

func deriveSelectionMode(q *Question) SelectionMode {
	if q.MultiSelect != nil && *q.MultiSelect {
		return SelectionMultiple
	}
	if len(q.CorrectAnswers) > 1 {
		return SelectionMultiple
	}
	return SelectionSingle
}

// Exam is the read-only exam definition consumed by the attempt engine.
type Exam struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	DurationMinutes int        `json:"duration_minutes"` // 0 = untimed
	Questions       []Question `json:"questions"`
	Sections        []string   `json:"sections"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Timed reports whether the exam runs against a clock.
func (e *Exam) Timed() bool {
	return e.DurationMinutes > 0
}

// Normalize computes derived fields once, right after the exam is loaded:
// selection modes for MCQs, default max scores and languages for coding
// questions. Nil slices become empty ones.
func (e *Exam) Normalize() {
	if e.Questions == nil {
		e.Questions = []Question{}
	}
	if e.Sections == nil {
		e.Sections = []string{}
	}
	for i := range e.Questions {
		q := &e.Questions[i]
		switch q.Type {
		case QuestionTypeMCQ:
			if q.Options == nil {
				q.Options = []string{}
			}
			q.SelectionMode = deriveSelectionMode(q)
		case QuestionTypeCoding:
			if q.MaxScore <= 0 {
				q.MaxScore = DefaultCodingMaxScore
			}
			if q.Language == "" {
				q.Language = DefaultCodingLanguage
			}
		}
	}
}

// Paper returns the candidate-facing view of the exam, without answers or
// expected outputs.
func (e *Exam) Paper() ExamPaper {
	questions := make([]QuestionForCandidate, len(e.Questions))
	for i, q := range e.Questions {
		questions[i] = QuestionForCandidate{
			Index:     i,
			Type:      q.Type,
			Text:      q.Text,
			Section:   q.Section,
			Options:   q.Options,
			Mode:      q.Mode(),
			MaxScore:  q.MaxScore,
			Language:  q.Language,
			TestCount: len(q.TestCases),
		}
		if q.Type != QuestionTypeMCQ {
			questions[i].Mode = ""
		}
	}
	return ExamPaper{
		ExamID:          e.ID,
		Title:           e.Title,
		DurationMinutes: e.DurationMinutes,
		Sections:        e.Sections,
		Questions:       questions,
	}
}

// ExamPaper is the payload sent to candidates.
type ExamPaper struct {
	ExamID          uuid.UUID              `json:"exam_id"`
	Title           string                 `json:"title"`
	DurationMinutes int                    `json:"duration_minutes"`
	Sections        []string               `json:"sections"`
	Questions       []QuestionForCandidate `json:"questions"`
}

// QuestionForCandidate is a question without its answer key or test outputs.
type QuestionForCandidate struct {
	Index     int           `json:"index"`
	Type      QuestionType  `json:"type"`
	Text      string        `json:"text"`
	Section   string        `json:"section,omitempty"`
	Options   []string      `json:"options,omitempty"`
	Mode      SelectionMode `json:"selection_mode,omitempty"`
	MaxScore  float64       `json:"max_score,omitempty"`
	Language  string        `json:"language,omitempty"`
	TestCount int           `json:"test_count,omitempty"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// VerdictStatus is the sandbox outcome of running one test case.
type VerdictStatus string

const (
	VerdictAccepted VerdictStatus = "Accepted"
	VerdictWrong    VerdictStatus = "Wrong Answer"
	VerdictError    VerdictStatus = "Error"
)

// Verdict is the pass/fail result of one test case.
type Verdict struct {
	TestCase int           `json:"test_case"`
	Passed   bool          `json:"passed"`
	Status   VerdictStatus `json:"status"`
	Stdout   string        `json:"stdout,omitempty"`
}

// ScoreTally is a correct/total/score triple for MCQ aggregates.
type ScoreTally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
	Score   int `json:"score"`
}

// CodingScore is the per-question coding outcome.
type CodingScore struct {
	PassCount  int     `json:"pass_count"`
	TotalTests int     `json:"total_tests"`
	MaxScore   float64 `json:"max_score"`
	Score      float64 `json:"score"`
}

// Submission is the one accepted, immutable result of an attempt.
type Submission struct {
	ID          uuid.UUID           `json:"id"`
	ExamID      uuid.UUID           `json:"exam_id"`
	Identity    CandidateIdentity   `json:"identity"`
	SubmittedAt time.Time           `json:"submitted_at"`
	Trigger     string              `json:"trigger"`
	Answers     map[int]AnswerValue `json:"answers"`

	MCQScore      ScoreTally            `json:"mcq_score"`
	SectionScores map[string]ScoreTally `json:"section_scores"`
	CodingScore   float64               `json:"coding_score"`
	TotalScore    float64               `json:"total_score"`
	MaxTotalScore float64               `json:"max_total_score"`
	Percentage    int                   `json:"percentage"`

	RunVerdictSummary map[int]CodingScore `json:"run_verdict_summary"`
}

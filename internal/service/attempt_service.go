package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/attempt"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/sandbox"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/scoring"
)

// RunResult is the outcome of running a candidate's code.
type RunResult struct {
	Verdicts []model.Verdict   `json:"verdicts"`
	Score    model.CodingScore `json:"score"`
}

// AttemptService wires the attempt engine to its stores, the sandbox and the
// Redis side channels (live monitor, violation audit queue).
type AttemptService struct {
	exams       *ExamService
	clock       *attempt.Clock
	registry    *attempt.Registry
	guard       *attempt.Guard
	submissions attempt.SubmissionStore
	judge       *sandbox.Judge
	rdb         *redis.Client
	settleDelay time.Duration
	log         zerolog.Logger
}

// AttemptDeps groups the collaborators of NewAttemptService.
type AttemptDeps struct {
	Exams       *ExamService
	Clock       *attempt.Clock
	Registry    *attempt.Registry
	Guard       *attempt.Guard
	Submissions attempt.SubmissionStore
	Judge       *sandbox.Judge
	RDB         *redis.Client
	SettleDelay time.Duration
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(deps AttemptDeps, log zerolog.Logger) *AttemptService {
	return &AttemptService{
		exams:       deps.Exams,
		clock:       deps.Clock,
		registry:    deps.Registry,
		guard:       deps.Guard,
		submissions: deps.Submissions,
		judge:       deps.Judge,
		rdb:         deps.RDB,
		settleDelay: deps.SettleDelay,
		log:         log.With().Str("component", "attempt_service").Logger(),
	}
}

// NewSession creates the state machine of one candidate connection. Events go
// to client and to the exam's live monitor channel; violations are also
// queued for the audit log.
func (s *AttemptService) NewSession(ctx context.Context, examID uuid.UUID, client attempt.Sink) (*attempt.Machine, *model.Exam, error) {
	exam, err := s.exams.GetExam(ctx, examID)
	if err != nil {
		return nil, nil, err
	}

	m := attempt.NewMachine(ctx, exam, attempt.Deps{
		Clock:       s.clock,
		Registry:    s.registry,
		Guard:       s.guard,
		Submissions: s.submissions,
		Scheduler:   attempt.TimerScheduler{},
		Sink:        attempt.MultiSink{client, NewRedisSink(s.rdb, s.log)},
		SettleDelay: s.settleDelay,
		Log:         s.log,
	})
	return m, exam, nil
}

// CheckEligibility validates the identity and asks the guard whether the
// candidate may start. It has no side effects.
func (s *AttemptService) CheckEligibility(ctx context.Context, examID uuid.UUID, id model.CandidateIdentity) (attempt.Decision, error) {
	if _, err := s.exams.GetExam(ctx, examID); err != nil {
		return attempt.Decision{}, err
	}
	id, err := attempt.ValidateIdentity(id)
	if err != nil {
		return attempt.Decision{}, err
	}
	return s.guard.CanAttemptOrSubmit(ctx, examID, id, attempt.PhaseStart)
}

// RunCode runs source against every test case of coding question index.
func (s *AttemptService) RunCode(ctx context.Context, exam *model.Exam, index int, language, source string) (RunResult, error) {
	if index < 0 || index >= len(exam.Questions) {
		return RunResult{}, attempt.ErrQuestionOutOfRange
	}
	q := &exam.Questions[index]
	if q.Type != model.QuestionTypeCoding {
		return RunResult{}, attempt.ErrNotCodingQuestion
	}
	if language == "" {
		language = q.Language
	}

	verdicts := s.judge.RunTestCases(ctx, language, source, q.TestCases)
	return RunResult{
		Verdicts: verdicts,
		Score:    scoring.ScoreCoding(q.CodingMaxScore(), verdicts),
	}, nil
}

// RunCodeByID is RunCode for callers that only hold the exam id.
func (s *AttemptService) RunCodeByID(ctx context.Context, examID uuid.UUID, index int, language, source string) (RunResult, error) {
	exam, err := s.exams.GetExam(ctx, examID)
	if err != nil {
		return RunResult{}, err
	}
	return s.RunCode(ctx, exam, index, language, source)
}

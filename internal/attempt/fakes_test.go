package attempt

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/config"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

var errStoreDown = errors.New("store unavailable")

type fakeTime struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeTime() *fakeTime {
	return &fakeTime{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeTime) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeTime) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type attemptKey struct {
	exam  uuid.UUID
	phone string
}

type memAttempts struct {
	mu        sync.Mutex
	rows      map[attemptKey]model.Attempt
	creates   int
	updates   int
	createErr error
	// raceWith is inserted by another writer just before CreateAttempt runs.
	raceWith *model.Attempt
}

func newMemAttempts() *memAttempts {
	return &memAttempts{rows: make(map[attemptKey]model.Attempt)}
}

func (s *memAttempts) GetAttempt(_ context.Context, examID uuid.UUID, phone string) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[attemptKey{examID, phone}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *memAttempts) CreateAttempt(_ context.Context, examID uuid.UUID, phone string, startedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if s.raceWith != nil {
		s.rows[attemptKey{examID, phone}] = *s.raceWith
		s.raceWith = nil
	}
	k := attemptKey{examID, phone}
	if _, ok := s.rows[k]; ok {
		return ErrAttemptExists
	}
	s.creates++
	s.rows[k] = model.Attempt{ExamID: examID, Phone: phone, StartedAt: startedAt}
	return nil
}

func (s *memAttempts) UpdateAttemptStart(_ context.Context, examID uuid.UUID, phone string, startedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	s.rows[attemptKey{examID, phone}] = model.Attempt{ExamID: examID, Phone: phone, StartedAt: startedAt}
	return nil
}

type memBlocks struct {
	mu        sync.Mutex
	rows      map[attemptKey]model.BlockRecord
	upserts   int
	upsertErr error
}

func newMemBlocks() *memBlocks {
	return &memBlocks{rows: make(map[attemptKey]model.BlockRecord)}
}

func (s *memBlocks) GetBlock(_ context.Context, examID uuid.UUID, phone string) (*model.BlockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[attemptKey{examID, phone}]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *memBlocks) UpsertBlock(_ context.Context, examID uuid.UUID, phone string, blocked bool, reason string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.rows[attemptKey{examID, phone}] = model.BlockRecord{
		ExamID: examID, Phone: phone, Blocked: blocked, Reason: reason, ViolationCount: count,
	}
	return nil
}

type memSubmissions struct {
	mu        sync.Mutex
	rows      []*model.Submission
	createErr error
}

func (s *memSubmissions) FindSubmission(_ context.Context, examID uuid.UUID, key SubmissionKey) (*model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.rows {
		if sub.ExamID != examID {
			continue
		}
		if key.AccountID != "" {
			if sub.Identity.AccountID == key.AccountID {
				return sub, nil
			}
			continue
		}
		if sub.Identity.Phone == key.Phone {
			return sub, nil
		}
	}
	return nil, nil
}

func (s *memSubmissions) CreateSubmission(_ context.Context, sub *model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.rows = append(s.rows, sub)
	return nil
}

func (s *memSubmissions) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type manualTimer struct {
	fn        func()
	cancelled bool
}

// manualScheduler fires timers only when the test says so.
type manualScheduler struct {
	mu    sync.Mutex
	every []*manualTimer
	after []*manualTimer
}

func (s *manualScheduler) Every(_ time.Duration, fn func()) func() {
	return s.add(&s.every, fn)
}

func (s *manualScheduler) After(_ time.Duration, fn func()) func() {
	return s.add(&s.after, fn)
}

func (s *manualScheduler) add(list *[]*manualTimer, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{fn: fn}
	*list = append(*list, t)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		t.cancelled = true
	}
}

func (s *manualScheduler) live(list []*manualTimer) []func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var fns []func()
	for _, t := range list {
		if !t.cancelled {
			fns = append(fns, t.fn)
		}
	}
	return fns
}

// Tick fires every live periodic timer once.
func (s *manualScheduler) Tick() {
	for _, fn := range s.live(s.every) {
		fn()
	}
}

// FireAfter fires and retires every live one-shot timer.
func (s *manualScheduler) FireAfter() {
	s.mu.Lock()
	pending := s.after
	s.after = nil
	s.mu.Unlock()
	for _, t := range pending {
		if !t.cancelled {
			t.fn()
		}
	}
}

func (s *manualScheduler) activeTickers() int {
	return len(s.live(s.every))
}

type recordingSink struct {
	mu    sync.Mutex
	events []Event
}

func (r *recordingSink) Emit(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingSink) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *recordingSink) has(t EventType) bool {
	for _, got := range r.types() {
		if got == t {
			return true
		}
	}
	return false
}

type harness struct {
	exam        *model.Exam
	now         *fakeTime
	attempts    *memAttempts
	blocks      *memBlocks
	submissions *memSubmissions
	sched       *manualScheduler
	sink        *recordingSink
	machine     *Machine
}

func newHarness(exam *model.Exam, settle time.Duration) *harness {
	h := &harness{
		exam:        exam,
		now:         newFakeTime(),
		attempts:    newMemAttempts(),
		blocks:      newMemBlocks(),
		submissions: &memSubmissions{},
		sched:       &manualScheduler{},
		sink:        &recordingSink{},
	}
	registry := NewRegistry(h.blocks)
	h.machine = NewMachine(context.Background(), exam, Deps{
		Clock:       NewClock(h.attempts, config.StaleAttemptRegrant, h.now.Now, zerolog.Nop()),
		Registry:    registry,
		Guard:       NewGuard(registry, h.submissions),
		Submissions: h.submissions,
		Scheduler:   h.sched,
		Sink:        h.sink,
		Now:         h.now.Now,
		SettleDelay: settle,
		Log:         zerolog.Nop(),
	})
	return h
}

func intPtr(i int) *int { return &i }

// scenarioExam has two MCQs (single [1], multi [0,2]) and one coding
// question worth 10 with four test cases.
func scenarioExam(minutes int) *model.Exam {
	exam := &model.Exam{
		ID:              uuid.New(),
		Title:           "Backend screening",
		DurationMinutes: minutes,
		Questions: []model.Question{
			{Type: model.QuestionTypeMCQ, Text: "q1", Section: "Go", Options: []string{"a", "b", "c"}, CorrectAnswers: []int{1}},
			{Type: model.QuestionTypeMCQ, Text: "q2", Section: "Go", Options: []string{"a", "b", "c"}, CorrectAnswers: []int{0, 2}},
			{Type: model.QuestionTypeCoding, Text: "sum", MaxScore: 10, TestCases: []model.TestCase{
				{Input: "1 2", ExpectedOutput: "3"},
				{Input: "2 2", ExpectedOutput: "4"},
				{Input: "5 5", ExpectedOutput: "10"},
				{Input: "0 0", ExpectedOutput: "0"},
			}},
		},
	}
	exam.Normalize()
	return exam
}

var alice = model.CandidateIdentity{Name: "Alice", Phone: "+91 98765-43210"}

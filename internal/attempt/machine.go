package attempt

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/scoring"
)

// State is a node of the attempt lifecycle.
type State string

const (
	StateUnstarted         State = "unstarted"
	StatePendingFullscreen State = "pending_fullscreen"
	StateActive            State = "active"
	StateBlocked           State = "blocked"
	StateSubmitting        State = "submitting"
	StateSubmitted         State = "submitted"
)

// Trigger says what caused a submission.
type Trigger string

const (
	TriggerManual Trigger = "manual"
	TriggerExpiry Trigger = "expiry"
)

// TickInterval is the countdown resolution.
const TickInterval = time.Second

// DefaultSettleDelay is the pause between a persisted submission and the
// reveal of its result.
const DefaultSettleDelay = 1500 * time.Millisecond

// Deps are the collaborators of a Machine.
type Deps struct {
	Clock       *Clock
	Registry    *Registry
	Guard       *Guard
	Submissions SubmissionStore
	Scheduler   Scheduler
	Sink        Sink
	Now         func() time.Time
	SettleDelay time.Duration
	Log         zerolog.Logger
}

// StartRequest is the input of Start.
type StartRequest struct {
	Identity      model.CandidateIdentity
	RulesAccepted bool
	Fullscreen    bool // the client is already fullscreen
}

// Snapshot is a point-in-time copy of the machine's observable state.
type Snapshot struct {
	ExamID           uuid.UUID                 `json:"exam_id"`
	State            State                     `json:"state"`
	Identity         model.CandidateIdentity   `json:"identity"`
	RemainingSeconds int64                     `json:"remaining_seconds"`
	Untimed          bool                      `json:"untimed"`
	Violations       map[ViolationKind]int     `json:"violations"`
	Answered         []int                     `json:"answered"`
	Runs             map[int]model.CodingScore `json:"runs,omitempty"`
	BlockReason      string                    `json:"block_reason,omitempty"`
	Result           *model.Submission         `json:"result,omitempty"`
}

// Machine drives one candidate session through
// unstarted -> pending_fullscreen -> active -> {blocked | submitting -> submitted}.
// It is safe for concurrent use: the connection read loop and the scheduler
// callbacks serialize on one mutex.
type Machine struct {
	mu   sync.Mutex
	ctx  context.Context // session lifetime, used by scheduler callbacks
	exam *model.Exam
	deps Deps
	log  zerolog.Logger

	state       State
	identity    model.CandidateIdentity
	monitor     *Monitor
	answers     map[int]model.AnswerValue
	verdicts    map[int][]model.Verdict
	untimed     bool
	deadline    time.Time
	remaining   time.Duration
	blockReason string
	result      *model.Submission

	// epoch invalidates scheduler callbacks that fire after their timer was
	// cancelled but before they acquired the lock.
	epoch      uint64
	stopTick   func()
	stopReveal func()
}

// NewMachine creates a machine for exam in the unstarted state. ctx bounds
// the store calls made from scheduler callbacks.
func NewMachine(ctx context.Context, exam *model.Exam, deps Deps) *Machine {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Scheduler == nil {
		deps.Scheduler = TimerScheduler{}
	}
	if deps.SettleDelay < 0 {
		deps.SettleDelay = 0
	}
	return &Machine{
		ctx:      ctx,
		exam:     exam,
		deps:     deps,
		log:      deps.Log.With().Str("component", "attempt_machine").Str("exam_id", exam.ID.String()).Logger(),
		state:    StateUnstarted,
		monitor:  NewMonitor(),
		answers:  make(map[int]model.AnswerValue),
		verdicts: make(map[int][]model.Verdict),
	}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start validates the identity, checks the guard and moves to
// pending_fullscreen, or straight to active when the client is already
// fullscreen. A rejected start leaves the machine unstarted.
func (m *Machine) Start(ctx context.Context, req StartRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateUnstarted {
		return ErrInvalidTransition
	}
	id, err := ValidateIdentity(req.Identity)
	if err != nil {
		return err
	}
	if !req.RulesAccepted {
		return ErrRulesNotAccepted
	}

	decision, err := m.deps.Guard.CanAttemptOrSubmit(ctx, m.exam.ID, id, PhaseStart)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return decision.Err()
	}

	m.identity = id
	if req.Fullscreen {
		return m.enterActive(ctx)
	}
	m.state = StatePendingFullscreen
	m.emit(Event{Type: EventState})
	return nil
}

// ConfirmFullscreen moves pending_fullscreen to active. In the active state
// it is a no-op: re-entering fullscreen after a violation does not reset the
// counters.
func (m *Machine) ConfirmFullscreen(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StatePendingFullscreen:
		return m.enterActive(ctx)
	case StateActive:
		return nil
	default:
		return ErrInvalidTransition
	}
}

// enterActive switches to active before the clock is consulted, so time
// spent negotiating fullscreen is never charged to the candidate.
func (m *Machine) enterActive(ctx context.Context) error {
	m.state = StateActive
	m.monitor.Reset()

	grant, err := m.deps.Clock.BeginOrResume(ctx, m.exam.ID, m.identity.Phone, m.exam.DurationMinutes)
	if err != nil {
		m.state = StatePendingFullscreen
		m.log.Error().Err(err).Str("phone", m.identity.Phone).Msg("Failed to begin attempt")
		return err
	}

	m.untimed = grant.Untimed
	m.remaining = grant.Remaining
	m.deadline = m.deps.Now().Add(grant.Remaining)

	m.log.Info().
		Str("phone", m.identity.Phone).
		Bool("resumed", grant.Resumed).
		Bool("regranted", grant.Regranted).
		Dur("remaining", grant.Remaining).
		Msg("Attempt active")
	m.emit(Event{Type: EventState})

	if m.untimed {
		return nil
	}
	if m.remaining <= 0 {
		if _, err := m.submit(ctx, TriggerExpiry); err != nil {
			m.log.Error().Err(err).Str("phone", m.identity.Phone).Msg("Expiry submission on resume failed")
		}
		return nil
	}
	m.startTicker()
	return nil
}

func (m *Machine) startTicker() {
	epoch := m.epoch
	m.stopTick = m.deps.Scheduler.Every(TickInterval, func() { m.tick(epoch) })
}

func (m *Machine) stopTimers() {
	m.epoch++
	if m.stopTick != nil {
		m.stopTick()
		m.stopTick = nil
	}
	if m.stopReveal != nil {
		m.stopReveal()
		m.stopReveal = nil
	}
}

func (m *Machine) tick(epoch uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch || m.state != StateActive || m.untimed {
		return
	}
	m.remaining = m.deadline.Sub(m.deps.Now())
	if m.remaining > 0 {
		m.emit(Event{Type: EventTick})
		return
	}

	m.remaining = 0
	m.emit(Event{Type: EventTick})
	if _, err := m.submit(m.ctx, TriggerExpiry); err != nil {
		m.log.Error().Err(err).Str("phone", m.identity.Phone).Msg("Expiry submission failed")
	}
}

// ReportViolation counts one violation. Outside the active state the report
// is ignored and the zero ViolationReport is returned. Reaching the threshold
// blocks the attempt; if the block cannot be written the machine still moves
// to blocked and returns the write error.
func (m *Machine) ReportViolation(ctx context.Context, kind ViolationKind) (ViolationReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateActive {
		return ViolationReport{}, nil
	}

	report := m.monitor.Report(kind)
	m.emit(Event{Type: EventViolation, Violation: &report})

	if !report.ShouldBlock {
		if report.RequestFullscreen {
			m.emit(Event{Type: EventRequestFullscreen})
		}
		return report, nil
	}

	m.stopTimers()
	m.state = StateBlocked
	m.answers = make(map[int]model.AnswerValue)
	m.verdicts = make(map[int][]model.Verdict)

	rec, err := m.deps.Registry.Block(ctx, m.exam.ID, m.identity.Phone, kind, report.Count)
	m.blockReason = rec.Reason
	m.emit(Event{Type: EventBlocked, Reason: rec.Reason})
	if err != nil {
		m.log.Error().Err(err).
			Str("phone", m.identity.Phone).
			Str("kind", string(kind)).
			Msg("Failed to persist block, session held blocked")
		return report, err
	}
	m.log.Warn().
		Str("phone", m.identity.Phone).
		Str("kind", string(kind)).
		Int("count", report.Count).
		Msg("Attempt blocked")
	return report, nil
}

// RecordAnswer stores the answer to question index. An empty value clears it.
func (m *Machine) RecordAnswer(index int, value model.AnswerValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateActive {
		return ErrInvalidTransition
	}
	if index < 0 || index >= len(m.exam.Questions) {
		return ErrQuestionOutOfRange
	}
	if value.Empty() {
		delete(m.answers, index)
		return nil
	}
	m.answers[index] = value
	return nil
}

// RecordRun stores the verdicts of the latest run of a coding question,
// replacing earlier ones. The source that was run becomes the answer to the
// question, so running code counts as answering it.
func (m *Machine) RecordRun(index int, answer model.AnswerValue, verdicts []model.Verdict) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateActive {
		return ErrInvalidTransition
	}
	if index < 0 || index >= len(m.exam.Questions) {
		return ErrQuestionOutOfRange
	}
	q := &m.exam.Questions[index]
	if q.Type != model.QuestionTypeCoding {
		return ErrNotCodingQuestion
	}
	m.verdicts[index] = append([]model.Verdict(nil), verdicts...)
	if answer.Source != "" {
		if answer.Language == "" {
			answer.Language = q.Language
		}
		m.answers[index] = model.AnswerValue{Source: answer.Source, Language: answer.Language}
	}
	return nil
}

// Submit scores and persists the attempt. A manual submit needs at least one
// recorded answer unless the time is already up.
func (m *Machine) Submit(ctx context.Context, trigger Trigger) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submit(ctx, trigger)
}

func (m *Machine) submit(ctx context.Context, trigger Trigger) (*model.Submission, error) {
	if m.state != StateActive {
		return nil, ErrInvalidTransition
	}
	timeUp := !m.untimed && m.remaining <= 0
	if trigger != TriggerExpiry && !timeUp && len(m.answers) == 0 {
		return nil, ErrNoAnswers
	}

	m.stopTimers()
	m.state = StateSubmitting
	m.emit(Event{Type: EventState})

	decision, err := m.deps.Guard.CanAttemptOrSubmit(ctx, m.exam.ID, m.identity, PhaseSubmit)
	if err != nil {
		m.resumeActive()
		return nil, err
	}
	if !decision.Allowed {
		return nil, m.rejectSubmit(decision)
	}

	res := scoring.Score(m.exam.Questions, m.answers, m.verdicts)
	sub := &model.Submission{
		ID:                uuid.New(),
		ExamID:            m.exam.ID,
		Identity:          m.identity,
		SubmittedAt:       m.deps.Now().UTC(),
		Trigger:           string(trigger),
		Answers:           m.answers,
		MCQScore:          res.MCQ,
		SectionScores:     res.Sections,
		CodingScore:       res.CodingScore,
		TotalScore:        res.TotalScore,
		MaxTotalScore:     res.MaxTotalScore,
		Percentage:        res.Percentage,
		RunVerdictSummary: res.Coding,
	}

	if err := m.deps.Submissions.CreateSubmission(ctx, sub); err != nil {
		if errors.Is(err, ErrDuplicateSubmission) {
			return nil, m.rejectSubmit(Decision{Reason: "already submitted", Cause: ErrDuplicateSubmission})
		}
		m.resumeActive()
		m.log.Error().Err(err).Str("phone", m.identity.Phone).Msg("Failed to persist submission")
		return nil, writeFailure("create submission", err)
	}

	m.log.Info().
		Str("phone", m.identity.Phone).
		Str("submission_id", sub.ID.String()).
		Str("trigger", string(trigger)).
		Float64("total", sub.TotalScore).
		Int("percentage", sub.Percentage).
		Msg("Submission persisted")

	m.result = sub
	m.emit(Event{Type: EventExitFullscreen})

	if m.deps.SettleDelay == 0 {
		m.reveal()
		return sub, nil
	}
	epoch := m.epoch
	m.stopReveal = m.deps.Scheduler.After(m.deps.SettleDelay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if epoch != m.epoch || m.state != StateSubmitting {
			return
		}
		m.reveal()
	})
	return sub, nil
}

func (m *Machine) reveal() {
	m.stopReveal = nil
	m.state = StateSubmitted
	m.emit(Event{Type: EventState})
	m.emit(Event{Type: EventResult, Result: m.result})
}

// rejectSubmit settles a submission the guard or the store refused: a
// blocked candidate ends blocked, a duplicate ends submitted without a result.
func (m *Machine) rejectSubmit(d Decision) error {
	if errors.Is(d.Cause, ErrAlreadyBlocked) {
		m.state = StateBlocked
		m.blockReason = d.Reason
		m.emit(Event{Type: EventBlocked, Reason: d.Reason})
		return d.Cause
	}
	m.state = StateSubmitted
	m.emit(Event{Type: EventState, Reason: d.Reason})
	return d.Cause
}

// resumeActive undoes a failed submission so the candidate can retry.
func (m *Machine) resumeActive() {
	m.state = StateActive
	if !m.untimed {
		m.remaining = m.deadline.Sub(m.deps.Now())
		if m.remaining > 0 {
			m.startTicker()
		} else {
			m.remaining = 0
		}
	}
	m.emit(Event{Type: EventState})
}

// ChangeIdentity discards the session when a different phone is entered. It
// is refused once the attempt is blocked, submitting or submitted.
func (m *Machine) ChangeIdentity(phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateBlocked, StateSubmitting, StateSubmitted:
		return ErrInvalidTransition
	}
	if model.NormalizePhone(phone) == m.identity.Phone {
		return nil
	}

	m.stopTimers()
	previous := m.identity.Phone
	m.state = StateUnstarted
	m.identity = model.CandidateIdentity{}
	m.monitor.Reset()
	m.answers = make(map[int]model.AnswerValue)
	m.verdicts = make(map[int][]model.Verdict)
	m.untimed = false
	m.remaining = 0
	m.deadline = time.Time{}
	m.log.Info().Str("previous_phone", previous).Msg("Identity changed, session reset")
	m.emit(Event{Type: EventState})
	return nil
}

// Snapshot returns a copy of the observable state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	answered := make([]int, 0, len(m.answers))
	for i := range m.exam.Questions {
		if _, ok := m.answers[i]; ok {
			answered = append(answered, i)
		}
	}
	runs := make(map[int]model.CodingScore, len(m.verdicts))
	for i, v := range m.verdicts {
		runs[i] = scoring.ScoreCoding(m.exam.Questions[i].CodingMaxScore(), v)
	}
	return Snapshot{
		ExamID:           m.exam.ID,
		State:            m.state,
		Identity:         m.identity,
		RemainingSeconds: seconds(m.remaining),
		Untimed:          m.untimed,
		Violations:       m.monitor.Counts(),
		Answered:         answered,
		Runs:             runs,
		BlockReason:      m.blockReason,
		Result:           m.result,
	}
}

// Close cancels pending timers. The machine is unusable afterwards.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimers()
}

// emit fills the common fields and hands ev to the sink. Sink errors are
// logged and never change the machine's state.
func (m *Machine) emit(ev Event) {
	if m.deps.Sink == nil {
		return
	}
	ev.ExamID = m.exam.ID
	ev.Phone = m.identity.Phone
	ev.Name = m.identity.Name
	if ev.State == "" {
		ev.State = m.state
	}
	ev.RemainingSeconds = seconds(m.remaining)
	ev.Untimed = m.untimed
	ev.At = m.deps.Now().UTC()
	if err := m.deps.Sink.Emit(ev); err != nil {
		m.log.Debug().Err(err).Str("event", string(ev.Type)).Msg("Event delivery failed")
	}
}

// seconds rounds up so a countdown shows 1 until it actually reaches zero.
func seconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64((d + time.Second - 1) / time.Second)
}

package attempt

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/config"
)

// Grant is what BeginOrResume hands back to the caller.
type Grant struct {
	Remaining time.Duration
	StartedAt time.Time
	Untimed   bool
	Resumed   bool // an existing, still-valid attempt was picked up
	Regranted bool // a stale attempt was restarted with the full duration
}

// Clock derives remaining time from the one persisted start timestamp of an
// attempt, so a reload never resets or extends the countdown.
type Clock struct {
	store  AttemptStore
	policy config.StaleAttemptPolicy
	now    func() time.Time
	log    zerolog.Logger
}

// NewClock creates a Clock. A nil now defaults to time.Now.
func NewClock(store AttemptStore, policy config.StaleAttemptPolicy, now func() time.Time, log zerolog.Logger) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{
		store:  store,
		policy: policy,
		now:    now,
		log:    log.With().Str("component", "attempt_clock").Logger(),
	}
}

// BeginOrResume starts the attempt of (examID, phone) or resumes it. It
// performs at most one attempt write per call. Untimed exams
// (durationMinutes <= 0) write nothing.
func (c *Clock) BeginOrResume(ctx context.Context, examID uuid.UUID, phone string, durationMinutes int) (Grant, error) {
	if durationMinutes <= 0 {
		return Grant{Untimed: true}, nil
	}
	full := time.Duration(durationMinutes) * time.Minute
	now := c.now()

	existing, err := c.store.GetAttempt(ctx, examID, phone)
	if err != nil {
		return Grant{}, writeFailure("get attempt", err)
	}

	if existing == nil {
		err := c.store.CreateAttempt(ctx, examID, phone, now)
		if err == nil {
			return Grant{Remaining: full, StartedAt: now}, nil
		}
		if !errors.Is(err, ErrAttemptExists) {
			return Grant{}, writeFailure("create attempt", err)
		}
		// Lost the insert race: read the winner and fall through to resume.
		existing, err = c.store.GetAttempt(ctx, examID, phone)
		if err != nil {
			return Grant{}, writeFailure("reload attempt", err)
		}
		if existing == nil {
			return Grant{}, writeFailure("reload attempt", ErrAttemptExists)
		}
	}

	remaining := full - now.Sub(existing.StartedAt)
	if remaining > full {
		// Start timestamp in the future (clock skew between writers).
		remaining = full
	}
	if remaining > 0 {
		return Grant{Remaining: remaining, StartedAt: existing.StartedAt, Resumed: true}, nil
	}

	if c.policy == config.StaleAttemptExpire {
		c.log.Info().
			Str("exam_id", examID.String()).
			Str("phone", phone).
			Msg("Resumed an expired attempt, no time left")
		return Grant{Remaining: 0, StartedAt: existing.StartedAt, Resumed: true}, nil
	}

	if err := c.store.UpdateAttemptStart(ctx, examID, phone, now); err != nil {
		return Grant{}, writeFailure("update attempt start", err)
	}
	c.log.Info().
		Str("exam_id", examID.String()).
		Str("phone", phone).
		Time("previous_start", existing.StartedAt).
		Msg("Stale attempt restarted with full duration")
	return Grant{Remaining: full, StartedAt: now, Regranted: true}, nil
}

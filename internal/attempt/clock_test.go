package attempt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/config"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

func TestBeginOrResume(t *testing.T) {
	examID := uuid.New()
	const phone = "9876543210"
	ctx := context.Background()

	t.Run("fresh attempt gets full duration", func(t *testing.T) {
		now := newFakeTime()
		store := newMemAttempts()
		clock := NewClock(store, config.StaleAttemptRegrant, now.Now, zerolog.Nop())

		g, err := clock.BeginOrResume(ctx, examID, phone, 30)
		if err != nil {
			t.Fatalf("BeginOrResume: %v", err)
		}
		if g.Remaining != 30*time.Minute || g.Resumed || g.Regranted {
			t.Fatalf("grant = %+v", g)
		}
		if store.creates != 1 {
			t.Fatalf("creates = %d, want 1", store.creates)
		}
	})

	t.Run("idempotent and non-increasing", func(t *testing.T) {
		now := newFakeTime()
		store := newMemAttempts()
		clock := NewClock(store, config.StaleAttemptRegrant, now.Now, zerolog.Nop())

		first, err := clock.BeginOrResume(ctx, examID, phone, 30)
		if err != nil {
			t.Fatalf("first: %v", err)
		}
		now.Advance(200 * time.Millisecond)
		second, err := clock.BeginOrResume(ctx, examID, phone, 30)
		if err != nil {
			t.Fatalf("second: %v", err)
		}
		if store.creates != 1 || store.updates != 0 {
			t.Fatalf("writes: creates=%d updates=%d, want 1 and 0", store.creates, store.updates)
		}
		if second.Remaining > first.Remaining {
			t.Fatalf("remaining grew: %v -> %v", first.Remaining, second.Remaining)
		}
		if !second.Resumed {
			t.Fatal("second call should resume")
		}
	})

	t.Run("resume after reload keeps the countdown", func(t *testing.T) {
		now := newFakeTime()
		store := newMemAttempts()
		clock := NewClock(store, config.StaleAttemptRegrant, now.Now, zerolog.Nop())

		if _, err := clock.BeginOrResume(ctx, examID, phone, 30); err != nil {
			t.Fatal(err)
		}
		now.Advance(12 * time.Minute)
		g, err := clock.BeginOrResume(ctx, examID, phone, 30)
		if err != nil {
			t.Fatal(err)
		}
		if g.Remaining != 18*time.Minute {
			t.Fatalf("remaining = %v, want 18m", g.Remaining)
		}
	})

	t.Run("stale attempt regranted", func(t *testing.T) {
		now := newFakeTime()
		store := newMemAttempts()
		clock := NewClock(store, config.StaleAttemptRegrant, now.Now, zerolog.Nop())

		if _, err := clock.BeginOrResume(ctx, examID, phone, 30); err != nil {
			t.Fatal(err)
		}
		now.Advance(45 * time.Minute)
		g, err := clock.BeginOrResume(ctx, examID, phone, 30)
		if err != nil {
			t.Fatal(err)
		}
		if !g.Regranted || g.Remaining != 30*time.Minute {
			t.Fatalf("grant = %+v, want full regrant", g)
		}
		if store.updates != 1 {
			t.Fatalf("updates = %d, want 1", store.updates)
		}
		a, _ := store.GetAttempt(ctx, examID, phone)
		if !a.StartedAt.Equal(now.Now()) {
			t.Fatalf("start not moved: %v", a.StartedAt)
		}
	})

	t.Run("stale attempt expired by policy", func(t *testing.T) {
		now := newFakeTime()
		store := newMemAttempts()
		clock := NewClock(store, config.StaleAttemptExpire, now.Now, zerolog.Nop())

		if _, err := clock.BeginOrResume(ctx, examID, phone, 30); err != nil {
			t.Fatal(err)
		}
		now.Advance(31 * time.Minute)
		g, err := clock.BeginOrResume(ctx, examID, phone, 30)
		if err != nil {
			t.Fatal(err)
		}
		if g.Remaining != 0 || g.Regranted {
			t.Fatalf("grant = %+v, want zero remaining", g)
		}
		if store.updates != 0 {
			t.Fatalf("updates = %d, want 0", store.updates)
		}
	})

	t.Run("untimed writes nothing", func(t *testing.T) {
		store := newMemAttempts()
		clock := NewClock(store, config.StaleAttemptRegrant, nil, zerolog.Nop())

		g, err := clock.BeginOrResume(ctx, examID, phone, 0)
		if err != nil {
			t.Fatal(err)
		}
		if !g.Untimed || store.creates != 0 {
			t.Fatalf("grant = %+v creates = %d", g, store.creates)
		}
	})

	t.Run("lost insert race resumes the winner", func(t *testing.T) {
		now := newFakeTime()
		store := newMemAttempts()
		store.raceWith = &model.Attempt{ExamID: examID, Phone: phone, StartedAt: now.Now().Add(-5 * time.Minute)}
		clock := NewClock(store, config.StaleAttemptRegrant, now.Now, zerolog.Nop())

		g, err := clock.BeginOrResume(ctx, examID, phone, 30)
		if err != nil {
			t.Fatal(err)
		}
		if !g.Resumed || g.Remaining != 25*time.Minute {
			t.Fatalf("grant = %+v, want resumed with 25m", g)
		}
	})

	t.Run("store failure is a write failure", func(t *testing.T) {
		store := newMemAttempts()
		store.createErr = errStoreDown
		clock := NewClock(store, config.StaleAttemptRegrant, nil, zerolog.Nop())

		_, err := clock.BeginOrResume(ctx, examID, phone, 30)
		if !errors.Is(err, ErrWriteFailure) || !errors.Is(err, errStoreDown) {
			t.Fatalf("err = %v, want write failure wrapping cause", err)
		}
	})
}

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/config"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// ViolationStore is where audited violations end up.
type ViolationStore interface {
	CopyViolations(ctx context.Context, batch []model.ViolationEvent) error
	InsertViolation(ctx context.Context, v model.ViolationEvent) error
}

// ViolationWorker drains the violation queue into the audit table in batches.
type ViolationWorker struct {
	store   ViolationStore
	rdb     *redis.Client
	log     zerolog.Logger
	requeue func(ctx context.Context, items []model.ViolationEvent) error
	backoff time.Duration
}

func NewViolationWorker(store ViolationStore, rdb *redis.Client, log zerolog.Logger) *ViolationWorker {
	w := &ViolationWorker{
		store:   store,
		rdb:     rdb,
		log:     log.With().Str("component", "violation_worker").Logger(),
		backoff: 2 * time.Second,
	}
	w.requeue = w.pushBack
	return w
}

func (w *ViolationWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ViolationWorker started")

	buffer := make([]model.ViolationEvent, 0, BatchSize)
	lastFlushTime := time.Now()

	for {
		// 1. Flush on size or age
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlushTime) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlushTime = time.Now()
			}
		}

		// 2. Graceful shutdown
		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		// 3. BLPop returns immediately when data exists
		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistViolationsQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				continue // handled by the shutdown branch
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		var ev model.ViolationEvent
		if err := json.Unmarshal([]byte(result[1]), &ev); err != nil {
			// Malformed payloads can never succeed.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed JSON")
			continue
		}
		buffer = append(buffer, ev)
	}
}

// flushSafe tries one COPY, then row-by-row inserts, then requeues what is
// left.
func (w *ViolationWorker) flushSafe(ctx context.Context, batch []model.ViolationEvent) {
	valid := make([]model.ViolationEvent, 0, len(batch))
	for _, ev := range batch {
		if ev.ExamID == uuid.Nil || ev.Phone == "" || ev.Kind == "" {
			w.log.Error().Str("phone", ev.Phone).Msg("Dropping incomplete violation event")
			continue
		}
		if ev.RecordedAt.IsZero() {
			ev.RecordedAt = time.Now().UTC()
		}
		valid = append(valid, ev)
	}
	if len(valid) == 0 {
		return
	}

	if err := w.store.CopyViolations(ctx, valid); err != nil {
		w.log.Warn().Err(err).Int("count", len(valid)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, valid)
		return
	}
	w.log.Debug().Int("count", len(valid)).Msg("Violations persisted")
}

func (w *ViolationWorker) fallbackInsert(ctx context.Context, batch []model.ViolationEvent) {
	var failed []model.ViolationEvent
	for _, ev := range batch {
		if err := w.store.InsertViolation(ctx, ev); err != nil {
			w.log.Error().Err(err).Str("phone", ev.Phone).Msg("Insert failed, requeueing")
			failed = append(failed, ev)
		}
	}
	if len(failed) == 0 {
		return
	}

	if err := w.requeue(ctx, failed); err != nil {
		w.log.Error().Err(err).Int("count", len(failed)).Msg("CRITICAL: Failed to requeue violations. Audit rows lost.")
		return
	}
	w.log.Info().Int("count", len(failed)).Msg("Requeued failed violations")
	// Avoid thrashing while the database is down.
	time.Sleep(w.backoff)
}

func (w *ViolationWorker) pushBack(ctx context.Context, items []model.ViolationEvent) error {
	pipe := w.rdb.Pipeline()
	for _, ev := range items {
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		pipe.RPush(ctx, config.WorkerKey.PersistViolationsQueue, data)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (w *ViolationWorker) shutdown(buffer []model.ViolationEvent) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/attempt"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/config"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

const sinkTimeout = 2 * time.Second

// MonitorMessage is what the live monitor receives over Redis pub/sub.
type MonitorMessage struct {
	Type             string                   `json:"type"`
	Phone            string                   `json:"phone,omitempty"`
	Name             string                   `json:"name,omitempty"`
	State            attempt.State            `json:"state,omitempty"`
	RemainingSeconds int64                    `json:"remaining_seconds,omitempty"`
	Violation        *attempt.ViolationReport `json:"violation,omitempty"`
	Reason           string                   `json:"reason,omitempty"`
	Percentage       *int                     `json:"percentage,omitempty"`
	At               time.Time                `json:"at"`
}

// RedisSink publishes machine events to the exam monitor channel and queues
// violations for the audit worker. Ticks are not forwarded.
type RedisSink struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisSink creates a RedisSink.
func NewRedisSink(rdb *redis.Client, log zerolog.Logger) *RedisSink {
	return &RedisSink{rdb: rdb, log: log.With().Str("component", "redis_sink").Logger()}
}

func (s *RedisSink) Emit(ev attempt.Event) error {
	msg, ok := MonitorMessageFor(ev)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	pipe := s.rdb.Pipeline()
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	pipe.Publish(ctx, config.CacheKey.ExamMonitorChannel(ev.ExamID.String()), payload)

	if ev.Type == attempt.EventViolation && ev.Violation != nil {
		audit, err := json.Marshal(model.ViolationEvent{
			ExamID:     ev.ExamID,
			Phone:      ev.Phone,
			Kind:       string(ev.Violation.Kind),
			Count:      ev.Violation.Count,
			RecordedAt: ev.At,
		})
		if err != nil {
			return err
		}
		pipe.RPush(ctx, config.WorkerKey.PersistViolationsQueue, audit)
	}

	_, err = pipe.Exec(ctx)
	return err
}

// MonitorMessageFor converts a machine event to its monitor form. ok is false
// for events the monitor does not show.
func MonitorMessageFor(ev attempt.Event) (MonitorMessage, bool) {
	switch ev.Type {
	case attempt.EventState, attempt.EventViolation, attempt.EventBlocked, attempt.EventResult:
	default:
		return MonitorMessage{}, false
	}
	if ev.Phone == "" {
		return MonitorMessage{}, false
	}

	msg := MonitorMessage{
		Type:             string(ev.Type),
		Phone:            ev.Phone,
		Name:             ev.Name,
		State:            ev.State,
		RemainingSeconds: ev.RemainingSeconds,
		Violation:        ev.Violation,
		Reason:           ev.Reason,
		At:               ev.At,
	}
	if ev.Result != nil {
		p := ev.Result.Percentage
		msg.Percentage = &p
	}
	return msg, true
}

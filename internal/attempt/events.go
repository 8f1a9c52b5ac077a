package attempt

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
)

// EventType names a machine lifecycle event.
type EventType string

const (
	EventState             EventType = "state"
	EventTick              EventType = "tick"
	EventViolation         EventType = "violation"
	EventRequestFullscreen EventType = "request_fullscreen"
	EventExitFullscreen    EventType = "exit_fullscreen"
	EventBlocked           EventType = "blocked"
	EventResult            EventType = "result"
)

// Event is what the machine tells its observers. The same value feeds the
// candidate connection, the live admin monitor and the violation audit log.
type Event struct {
	Type             EventType         `json:"type"`
	ExamID           uuid.UUID         `json:"exam_id"`
	Phone            string            `json:"phone,omitempty"`
	Name             string            `json:"name,omitempty"`
	State            State             `json:"state"`
	RemainingSeconds int64             `json:"remaining_seconds"`
	Untimed          bool              `json:"untimed,omitempty"`
	Violation        *ViolationReport  `json:"violation,omitempty"`
	Reason           string            `json:"reason,omitempty"`
	Result           *model.Submission `json:"result,omitempty"`
	At               time.Time         `json:"at"`
}

// Sink receives machine events. Emit is called with the machine lock held, so
// an implementation must not call back into the machine.
type Sink interface {
	Emit(ev Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev Event) error

func (f SinkFunc) Emit(ev Event) error { return f(ev) }

// MultiSink delivers every event to each sink and joins their errors.
type MultiSink []Sink

func (ms MultiSink) Emit(ev Event) error {
	var errs []error
	for _, s := range ms {
		if s == nil {
			continue
		}
		if err := s.Emit(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

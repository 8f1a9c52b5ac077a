package model

import (
	"time"

	"github.com/google/uuid"
)

// Attempt records when a candidate's timed session began. StartedAt is the
// only source of truth for remaining time.
type Attempt struct {
	ExamID    uuid.UUID `json:"exam_id"`
	Phone     string    `json:"phone"`
	StartedAt time.Time `json:"started_at"`
}

// BlockRecord denies further attempts for one phone on one exam.
type BlockRecord struct {
	ExamID         uuid.UUID  `json:"exam_id"`
	Phone          string     `json:"phone"`
	Blocked        bool       `json:"blocked"`
	Reason         string     `json:"reason"`
	ViolationCount int        `json:"violation_count"`
	BlockedAt      time.Time  `json:"blocked_at"`
	UnblockedAt    *time.Time `json:"unblocked_at,omitempty"`
}

// ViolationEvent is one audit row for a reported integrity violation.
type ViolationEvent struct {
	ExamID     uuid.UUID `json:"exam_id"`
	Phone      string    `json:"phone"`
	Kind       string    `json:"kind"`
	Count      int       `json:"count"`
	Detail     string    `json:"detail,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

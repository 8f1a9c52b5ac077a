package attempt

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidIdentity     = errors.New("candidate name is required and phone needs at least 10 digits")
	ErrRulesNotAccepted    = errors.New("exam rules must be accepted before starting")
	ErrAlreadyBlocked      = errors.New("candidate is blocked for this exam")
	ErrDuplicateSubmission = errors.New("a submission already exists for this candidate")
	ErrNoAnswers           = errors.New("at least one answer must be recorded before submitting")
	ErrInvalidTransition   = errors.New("action not allowed in the current attempt state")
	ErrWriteFailure        = errors.New("failed to persist attempt state")
	ErrQuestionOutOfRange  = errors.New("question index out of range")
	ErrNotCodingQuestion   = errors.New("question is not a coding question")
	ErrAttemptExists       = errors.New("attempt already exists")
	ErrBlockNotFound       = errors.New("no block record for this candidate")
)

// BlockedError carries the stored reason of a block so it can be shown to the
// candidate. It matches ErrAlreadyBlocked with errors.Is.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	if e.Reason == "" {
		return ErrAlreadyBlocked.Error()
	}
	return fmt.Sprintf("%s: %s", ErrAlreadyBlocked.Error(), e.Reason)
}

func (e *BlockedError) Is(target error) bool {
	return target == ErrAlreadyBlocked
}

// writeFailure wraps a store error so callers can match ErrWriteFailure while
// keeping the underlying cause.
func writeFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrWriteFailure, op, err)
}

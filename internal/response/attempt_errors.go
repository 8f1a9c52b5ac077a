package response

import (
	"errors"
	"net/http"

	"github.com/vaweTech/LMS1.5Exam-sub000/internal/attempt"
)

// FromAttemptError maps an attempt engine error to an HTTP status and code.
func FromAttemptError(err error) (int, ErrCode) {
	switch {
	case errors.Is(err, attempt.ErrInvalidIdentity):
		return http.StatusBadRequest, ErrInvalidIdentity
	case errors.Is(err, attempt.ErrRulesNotAccepted):
		return http.StatusBadRequest, ErrRulesNotAccepted
	case errors.Is(err, attempt.ErrAlreadyBlocked):
		return http.StatusForbidden, ErrAlreadyBlocked
	case errors.Is(err, attempt.ErrDuplicateSubmission):
		return http.StatusConflict, ErrDuplicateSubmission
	case errors.Is(err, attempt.ErrNoAnswers):
		return http.StatusUnprocessableEntity, ErrNoAnswers
	case errors.Is(err, attempt.ErrInvalidTransition):
		return http.StatusConflict, ErrInvalidTransition
	case errors.Is(err, attempt.ErrQuestionOutOfRange):
		return http.StatusBadRequest, ErrQuestionOutOfRange
	case errors.Is(err, attempt.ErrNotCodingQuestion):
		return http.StatusBadRequest, ErrNotCodingQuestion
	case errors.Is(err, attempt.ErrBlockNotFound):
		return http.StatusNotFound, ErrBlockNotFound
	case errors.Is(err, attempt.ErrWriteFailure):
		return http.StatusServiceUnavailable, ErrWriteFailure
	default:
		return http.StatusInternalServerError, ErrInternal
	}
}

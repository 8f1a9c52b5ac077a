package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/attempt"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/response"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/service"
)

// parseExamID reads the :exam_id path param, writing a 400 when malformed.
func parseExamID(c *gin.Context) (uuid.UUID, bool) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return examID, true
}

// errorCode maps service and engine errors to an HTTP status and API code.
func errorCode(err error) (int, response.ErrCode) {
	if errors.Is(err, service.ErrExamNotFound) {
		return http.StatusNotFound, response.ErrNotFound
	}
	return response.FromAttemptError(err)
}

// failWith writes the error response for err. A block carries its stored
// reason so the candidate sees why.
func failWith(c *gin.Context, err error) {
	status, code := errorCode(err)

	var blocked *attempt.BlockedError
	if errors.As(err, &blocked) && blocked.Reason != "" {
		response.FailWithFields(c, status, code, map[string]string{"reason": blocked.Reason})
		return
	}
	response.Fail(c, status, code)
}

var (
	errInvalidPayload = errors.New("invalid payload")
	errUnknownAction  = errors.New("unknown action")
)

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/middleware"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/response"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/service"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/validator"
)

// CandidateHandler serves the REST side of taking an exam.
type CandidateHandler struct {
	examService    *service.ExamService
	attemptService *service.AttemptService
	log            zerolog.Logger
}

// NewCandidateHandler creates a new CandidateHandler.
func NewCandidateHandler(examService *service.ExamService, attemptService *service.AttemptService, log zerolog.Logger) *CandidateHandler {
	return &CandidateHandler{
		examService:    examService,
		attemptService: attemptService,
		log:            log.With().Str("component", "candidate_handler").Logger(),
	}
}

// GetExamPaper godoc
// GET /api/v1/exams/:exam_id
// Returns the exam without answer keys or test cases.
func (h *CandidateHandler) GetExamPaper(c *gin.Context) {
	examID, ok := parseExamID(c)
	if !ok {
		return
	}

	paper, err := h.examService.Paper(c.Request.Context(), examID)
	if err != nil {
		if status, code := errorCode(err); code != response.ErrInternal {
			response.Fail(c, status, code)
			return
		}
		h.log.Error().Err(err).Str("exam_id", examID.String()).Msg("Failed to load exam paper")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, paper)
}

// eligibilityResponse is the body of a successful eligibility check.
type eligibilityResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Cause   string `json:"cause,omitempty"`
}

// CheckEligibility godoc
// POST /api/v1/exams/:exam_id/eligibility
// Tells the candidate whether they may start, before the WebSocket opens.
func (h *CandidateHandler) CheckEligibility(c *gin.Context) {
	examID, ok := parseExamID(c)
	if !ok {
		return
	}

	var req model.IdentityRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	if !req.RulesAccepted {
		response.Fail(c, http.StatusBadRequest, response.ErrRulesNotAccepted)
		return
	}

	decision, err := h.attemptService.CheckEligibility(c.Request.Context(), examID, model.CandidateIdentity{
		AccountID: middleware.AccountID(c),
		Name:      req.Name,
		Phone:     req.Phone,
	})
	if err != nil {
		h.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Eligibility check failed")
		failWith(c, err)
		return
	}

	body := eligibilityResponse{Allowed: decision.Allowed, Reason: decision.Reason}
	if decision.Cause != nil {
		_, code := errorCode(decision.Cause)
		body.Cause = string(code)
	}
	response.Success(c, http.StatusOK, body)
}

// runRequest is the body of a code run outside a live session.
type runRequest struct {
	Question int    `json:"question" binding:"min=0"`
	Language string `json:"language" binding:"omitempty,max=32"`
	Source   string `json:"source" binding:"required,max=65536"`
}

// RunCode godoc
// POST /api/v1/exams/:exam_id/run
// Runs code against a coding question's test cases. The verdicts are not
// recorded against any attempt.
func (h *CandidateHandler) RunCode(c *gin.Context) {
	examID, ok := parseExamID(c)
	if !ok {
		return
	}

	var req runRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.attemptService.RunCodeByID(c.Request.Context(), examID, req.Question, req.Language, req.Source)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

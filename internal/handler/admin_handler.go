package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/attempt"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/middleware"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/response"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/scoring"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/service"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/validator"
)

// AdminHandler handles exam administration: blocks, submissions and the
// exam cache.
type AdminHandler struct {
	examService       *service.ExamService
	blockService      *service.BlockService
	submissionService *service.SubmissionService
	log               zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	examService *service.ExamService,
	blockService *service.BlockService,
	submissionService *service.SubmissionService,
	log zerolog.Logger,
) *AdminHandler {
	return &AdminHandler{
		examService:       examService,
		blockService:      blockService,
		submissionService: submissionService,
		log:               log.With().Str("component", "admin_handler").Logger(),
	}
}

// ListBlocks godoc
// GET /api/v1/admin/exams/:exam_id/blocks?all=true
// Lists blocked candidates. all=true includes lifted blocks.
func (h *AdminHandler) ListBlocks(c *gin.Context) {
	examID, ok := parseExamID(c)
	if !ok {
		return
	}
	all, _ := strconv.ParseBool(c.DefaultQuery("all", "false"))

	blocks, err := h.blockService.List(c.Request.Context(), examID, !all)
	if err != nil {
		h.log.Error().Err(err).Str("exam_id", examID.String()).Msg("Failed to list blocks")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, blocks)
}

type unblockRequest struct {
	Note string `json:"note" binding:"max=200"`
}

// Unblock godoc
// POST /api/v1/admin/exams/:exam_id/blocks/:phone/unblock
// Lifts a block. The candidate can start again after reloading.
func (h *AdminHandler) Unblock(c *gin.Context) {
	examID, ok := parseExamID(c)
	if !ok {
		return
	}

	var req unblockRequest
	if c.Request.ContentLength > 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	var adminID string
	if claims := middleware.GetClaims(c); claims != nil {
		adminID = claims.Subject
	}

	if err := h.blockService.Unblock(c.Request.Context(), examID, c.Param("phone"), req.Note, adminID); err != nil {
		if errors.Is(err, attempt.ErrWriteFailure) {
			h.log.Error().Err(err).Str("exam_id", examID.String()).Msg("Failed to unblock")
		}
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "candidate unblocked"})
}

// ListSubmissions godoc
// GET /api/v1/admin/exams/:exam_id/submissions?page=1&per_page=10
func (h *AdminHandler) ListSubmissions(c *gin.Context) {
	examID, ok := parseExamID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	items, pagination, err := h.submissionService.List(c.Request.Context(), examID, page, perPage)
	if err != nil {
		h.log.Error().Err(err).Str("exam_id", examID.String()).Msg("Failed to list submissions")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, items, pagination)
}

// RefreshExamCache godoc
// POST /api/v1/admin/exams/:exam_id/refresh-cache
// Re-caches the exam after its questions were edited.
func (h *AdminHandler) RefreshExamCache(c *gin.Context) {
	examID, ok := parseExamID(c)
	if !ok {
		return
	}

	if err := h.examService.RefreshCache(c.Request.Context(), examID); err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Str("exam_id", examID.String()).Msg("Failed to refresh exam cache")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "exam cache refreshed successfully"})
}

type transformRequest struct {
	Input    string `json:"input"`
	Actual   string `json:"actual"`
	Expected string `json:"expected"`
}

type transformResponse struct {
	Input   string `json:"input"`
	Matches bool   `json:"matches"`
}

// PreviewTransform godoc
// POST /api/v1/admin/preview/transform
// Shows authors what a test case input looks like after the I/O transform and
// whether an output would be accepted.
func (h *AdminHandler) PreviewTransform(c *gin.Context) {
	var req transformRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	response.Success(c, http.StatusOK, transformResponse{
		Input:   scoring.TransformIO(req.Input),
		Matches: scoring.OutputMatches(req.Actual, req.Expected),
	})
}

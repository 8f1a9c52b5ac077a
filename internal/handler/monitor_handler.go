package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/config"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/response"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/service"
)

const (
	refreshInterval   = 15 * time.Second
	keepAliveInterval = 30 * time.Second
	refreshTimeout    = 5 * time.Second
)

type MonitorHandler struct {
	rdb            *redis.Client
	examService    *service.ExamService
	monitorService *service.MonitorService
	log            zerolog.Logger
}

func NewMonitorHandler(
	rdb *redis.Client,
	examService *service.ExamService,
	monitorService *service.MonitorService,
	log zerolog.Logger,
) *MonitorHandler {
	return &MonitorHandler{
		rdb:            rdb,
		examService:    examService,
		monitorService: monitorService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
	}
}

// MonitorExamSSE godoc
// GET /api/v1/admin/exams/:exam_id/monitor
// Streams a snapshot, then every machine event published for the exam, with
// periodic refreshes while candidates are active.
func (h *MonitorHandler) MonitorExamSSE(c *gin.Context) {
	examID, ok := parseExamID(c)
	if !ok {
		return
	}

	exam, err := h.examService.GetExam(c.Request.Context(), examID)
	if err != nil {
		status, code := errorCode(err)
		response.Fail(c, status, code)
		return
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	hasCandidates := h.sendSnapshot(c, reqCtx, examID, gin.H{
		"id":              exam.ID,
		"title":           exam.Title,
		"duration":        exam.DurationMinutes,
		"total_questions": len(exam.Questions),
	})

	pubsub := h.rdb.Subscribe(reqCtx, config.CacheKey.ExamMonitorChannel(examID.String()))
	defer pubsub.Close()
	ch := pubsub.Channel()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()

	h.log.Info().Str("exam_id", examID.String()).Msg("Admin attached to live monitor SSE")

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("exam_id", examID.String()).Msg("Admin disconnected from live monitor SSE")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Payloads are already JSON; forward them untouched.
			c.Writer.Write([]byte("data: "))
			c.Writer.Write([]byte(msg.Payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
			hasCandidates = true

		case <-refreshTicker.C:
			if !hasCandidates {
				continue
			}
			h.sendRefresh(c, reqCtx, examID)

		case <-keepAliveTicker.C:
			c.Writer.Write([]byte(": ping\n\n"))
			c.Writer.Flush()
		}
	}
}

// sendSnapshot writes the first SSE event and reports whether anyone is
// taking the exam.
func (h *MonitorHandler) sendSnapshot(c *gin.Context, ctx context.Context, examID uuid.UUID, exam gin.H) bool {
	fetchCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	snap, err := h.monitorService.GetSnapshot(fetchCtx, examID)
	if err != nil {
		h.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Failed to build monitor snapshot")
		snap = &service.MonitorSnapshot{}
	}

	c.SSEvent("message", gin.H{
		"type": "snapshot",
		"data": gin.H{
			"exam":     exam,
			"snapshot": snap,
		},
	})
	c.Writer.Flush()
	return len(snap.Live) > 0
}

// sendRefresh re-reads progress from the database and sends a refresh event.
func (h *MonitorHandler) sendRefresh(c *gin.Context, parentCtx context.Context, examID uuid.UUID) {
	ctx, cancel := context.WithTimeout(parentCtx, refreshTimeout)
	defer cancel()

	snap, err := h.monitorService.GetSnapshot(ctx, examID)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to fetch monitor refresh")
		return
	}

	c.SSEvent("message", gin.H{
		"type": "refresh",
		"data": snap,
	})
	c.Writer.Flush()
}

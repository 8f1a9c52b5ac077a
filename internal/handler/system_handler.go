package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/config"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/response"
)

const healthTimeout = 2 * time.Second

// SystemHandler reports process and dependency health.
type SystemHandler struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		pool:      pool,
		rdb:       rdb,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type healthReport struct {
	Status          string `json:"status"`
	Database        string `json:"database"`
	Redis           string `json:"redis"`
	Uptime          string `json:"uptime"`
	Goroutines      int    `json:"goroutines"`
	QueueViolations int64  `json:"queue_violations"`
	GoVersion       string `json:"go_version"`
}

// Health godoc
// GET /health
// Pings Postgres and Redis. Returns 503 when either is down.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	report := healthReport{
		Status:     "ok",
		Database:   "ok",
		Redis:      "ok",
		Uptime:     formatDuration(time.Since(h.startTime)),
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
	}

	if err := h.pool.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Database ping failed")
		report.Database = "down"
		report.Status = "degraded"
	}

	n, err := h.rdb.LLen(ctx, config.WorkerKey.PersistViolationsQueue).Result()
	if err != nil {
		h.log.Warn().Err(err).Msg("Redis ping failed")
		report.Redis = "down"
		report.Status = "degraded"
	}
	report.QueueViolations = n

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	response.Success(c, status, report)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

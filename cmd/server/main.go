package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/attempt"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/config"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/database"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/handler"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/logger"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/middleware"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/repository"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/router"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/sandbox"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/service"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/validator"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("stale_attempt_policy", string(cfg.StaleAttemptPolicy)).
		Msg("Starting exam attempt server")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	examRepo := repository.NewExamRepository(pool, log)
	attemptRepo := repository.NewAttemptRepository(pool)
	blockRepo := repository.NewBlockRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	monitorRepo := repository.NewMonitorRepository(pool)
	violationRepo := repository.NewViolationRepository(pool)

	// ─── Initialize Attempt Engine ─────────────────────────────────────
	registry := attempt.NewRegistry(blockRepo)
	guard := attempt.NewGuard(registry, submissionRepo)
	clock := attempt.NewClock(attemptRepo, cfg.StaleAttemptPolicy, time.Now, log)
	judge := sandbox.NewJudge(sandbox.NewHTTPClient(cfg.SandboxURL, cfg.SandboxTimeout), log)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	examService := service.NewExamService(examRepo, rdb, cfg.ExamCacheTTL, log)
	attemptService := service.NewAttemptService(service.AttemptDeps{
		Exams:       examService,
		Clock:       clock,
		Registry:    registry,
		Guard:       guard,
		Submissions: submissionRepo,
		Judge:       judge,
		RDB:         rdb,
		SettleDelay: cfg.SettleDelay,
	}, log)
	blockService := service.NewBlockService(blockRepo, registry, log)
	submissionService := service.NewSubmissionService(submissionRepo)
	monitorService := service.NewMonitorService(monitorRepo, blockRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Candidate: handler.NewCandidateHandler(examService, attemptService, log),
		WS:        handler.NewWSHandler(attemptService, log, cfg.AllowedOrigins),
		Admin:     handler.NewAdminHandler(examService, blockService, submissionService, log),
		Monitor:   handler.NewMonitorHandler(rdb, examService, monitorService, log),
		System:    handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	violationWorker := worker.NewViolationWorker(violationRepo, rdb, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		violationWorker.Start(workerCtx)
	}()

	limiterDone := make(chan struct{})
	eligibilityLimiter := middleware.NewRateLimiter(cfg.EligibilityRate, time.Minute)
	go eligibilityLimiter.Run(limiterDone)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, eligibilityLimiter, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests. Hijacked WebSocket connections
	// are not tracked by Shutdown and close with the process.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	close(limiterDone)

	// 2. Stop background workers and wait for the buffer flush.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

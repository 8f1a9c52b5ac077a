package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/config"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/handler"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/middleware"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/model"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/response"
	"github.com/vaweTech/LMS1.5Exam-sub000/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Candidate *handler.CandidateHandler
	WS        *handler.WSHandler
	Admin     *handler.AdminHandler
	Monitor   *handler.MonitorHandler
	System    *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// eligibilityLimiter throttles the identity check per client IP.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	eligibilityLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	// ─── 1. Candidate Group (optional account token) ───────────────────
	candidateAPI := router.Group("/api/v1/exams")
	candidateAPI.Use(middleware.OptionalCandidateJWT(authService))
	{
		candidateAPI.GET("/:exam_id", handlers.Candidate.GetExamPaper)
		candidateAPI.POST("/:exam_id/eligibility", eligibilityLimiter.Middleware(), handlers.Candidate.CheckEligibility)
		candidateAPI.POST("/:exam_id/run", eligibilityLimiter.Middleware(), handlers.Candidate.RunCode)
	}

	// ─── 2. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.OptionalCandidateJWT(authService))
	{
		ws.GET("/exams/:exam_id/attempt", handlers.WS.AttemptStream)
	}

	// ─── 3. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.GET("/exams/:exam_id/blocks",
			middleware.RequirePermission(model.PermissionBlocksRead),
			handlers.Admin.ListBlocks,
		)
		adminAPI.POST("/exams/:exam_id/blocks/:phone/unblock",
			middleware.RequirePermission(model.PermissionBlocksWrite),
			handlers.Admin.Unblock,
		)
		adminAPI.GET("/exams/:exam_id/submissions",
			middleware.RequirePermission(model.PermissionExamsRead),
			handlers.Admin.ListSubmissions,
		)
		adminAPI.POST("/exams/:exam_id/refresh-cache",
			middleware.RequirePermission(model.PermissionExamsPublish),
			handlers.Admin.RefreshExamCache,
		)
		adminAPI.GET("/exams/:exam_id/monitor",
			middleware.RequireAnyPermission(model.PermissionExamsRead, model.PermissionBlocksRead),
			handlers.Monitor.MonitorExamSSE,
		)
		adminAPI.POST("/preview/transform",
			middleware.RequireAnyPermission(model.PermissionExamsRead, model.PermissionExamsPublish),
			handlers.Admin.PreviewTransform,
		)
	}

	return router
}

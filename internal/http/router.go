package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/calmpath-backend/internal/http/handlers"
	httpMW "github.com/yungbote/calmpath-backend/internal/http/middleware"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowOrigins   []string
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler       *httpH.HealthHandler
	WatchSessionHandler *httpH.WatchSessionHandler
	ScoreHandler        *httpH.ScoreHandler
	RealtimeHandler     *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Watch sessions
		if cfg.WatchSessionHandler != nil {
			ws := protected.Group("/watch-sessions/:content_id")
			ws.GET("", cfg.WatchSessionHandler.Get)
			ws.PATCH("", cfg.WatchSessionHandler.Patch)
			ws.POST("/events", cfg.WatchSessionHandler.Events)
			ws.POST("/skip", cfg.WatchSessionHandler.Skip)
			ws.POST("/restart", cfg.WatchSessionHandler.Restart)
			ws.PUT("/reflection", cfg.WatchSessionHandler.PutReflection)
			ws.PUT("/techniques", cfg.WatchSessionHandler.PutTechniques)
		}

		// Score + leaderboard
		if cfg.ScoreHandler != nil {
			protected.GET("/score/me", cfg.ScoreHandler.Me)
			protected.GET("/leaderboard", cfg.ScoreHandler.Leaderboard)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/engagement/stream", cfg.RealtimeHandler.Stream)
		}
	}

	return r
}

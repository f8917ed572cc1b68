package app

import (
	httpMW "github.com/yungbote/calmpath-backend/internal/http/middleware"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	if cfg.JWTSecretKey == "" {
		log.Warn("JWT_SECRET_KEY not set; every protected request will be rejected")
	}
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}

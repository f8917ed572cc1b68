package app

import (
	"time"

	"github.com/yungbote/calmpath-backend/internal/http/middleware"
	"github.com/yungbote/calmpath-backend/internal/observability"
	"github.com/yungbote/calmpath-backend/internal/platform/envutil"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
	"github.com/yungbote/calmpath-backend/internal/realtime/bus"
	"github.com/yungbote/calmpath-backend/internal/services"
)

type Config struct {
	Port            string
	ShutdownTimeout time.Duration

	JWTSecretKey string
	AllowOrigins []string

	AutoMigrate bool

	Redis bus.RedisConfig

	LeaderboardConcurrency int
	Playback               services.PlaybackConfig

	Otel observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:            envutil.String("PORT", "8080", log),
		ShutdownTimeout: envutil.Seconds("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second, log),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", "", log),
		AllowOrigins: envutil.List("CORS_ALLOW_ORIGINS", middleware.DefaultAllowOrigins, log),

		AutoMigrate: envutil.Bool("POSTGRES_AUTO_MIGRATE", true, log),

		Redis: bus.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", "", log),
			Password: envutil.String("REDIS_PASSWORD", "", log),
			DB:       envutil.Int("REDIS_DB", 0, log),
			Channel:  envutil.String("REDIS_CHANNEL", bus.DefaultChannel, log),
		},

		LeaderboardConcurrency: envutil.Int("LEADERBOARD_MAX_CONCURRENCY", services.DefaultLeaderboardConcurrency, log),
		Playback:               services.PlaybackConfigFromEnv(log),

		Otel: observability.OtelConfigFromEnv(log),
	}
}

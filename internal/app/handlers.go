package app

import (
	httpH "github.com/yungbote/calmpath-backend/internal/http/handlers"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
	"github.com/yungbote/calmpath-backend/internal/realtime"
)

type Handlers struct {
	Health       *httpH.HealthHandler
	WatchSession *httpH.WatchSessionHandler
	Score        *httpH.ScoreHandler
	Realtime     *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, store httpH.Pinger, services Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(store),
		WatchSession: httpH.NewWatchSessionHandler(log, services.WatchSession, services.Playback),
		Score:        httpH.NewScoreHandler(log, services.Score, services.Leaderboard),
		Realtime:     httpH.NewRealtimeHandler(log, sseHub),
	}
}

package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/calmpath-backend/internal/platform/logger"
	"github.com/yungbote/calmpath-backend/internal/realtime/bus"
)

type Clients struct {
	// Bus carries engagement events between instances. Without REDIS_ADDR it is
	// in-process and only this instance's streams see them.
	Bus bus.Bus
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		log.Warn("REDIS_ADDR not set; engagement events stay on this instance")
		return Clients{Bus: bus.NewLocalBus()}, nil
	}
	b, err := bus.NewRedisBus(log, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis engagement bus: %w", err)
	}
	return Clients{Bus: b}, nil
}

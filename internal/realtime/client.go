package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/calmpath-backend/internal/platform/logger"
)

type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	closed   sync.Once
	Logger   *logger.Logger
}

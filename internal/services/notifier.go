package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/calmpath-backend/internal/domain"
	"github.com/yungbote/calmpath-backend/internal/realtime"
)

type EngagementNotifier interface {
	SkipDetected(ctx context.Context, userID uuid.UUID, contentID string)
	SessionProgress(ctx context.Context, userID uuid.UUID, session *types.WatchSession)
	SessionCompleted(ctx context.Context, userID uuid.UUID, session *types.WatchSession)
	SessionRestarted(ctx context.Context, userID uuid.UUID, contentID string)
}

type engagementNotifier struct {
	emit SSEEmitter
}

func NewEngagementNotifier(emit SSEEmitter) EngagementNotifier {
	return &engagementNotifier{emit: emit}
}

func (n *engagementNotifier) SkipDetected(ctx context.Context, userID uuid.UUID, contentID string) {
	n.send(ctx, userID, realtime.SSEEventSkipDetected, map[string]any{"content_id": contentID})
}

func (n *engagementNotifier) SessionProgress(ctx context.Context, userID uuid.UUID, session *types.WatchSession) {
	if session == nil {
		return
	}
	n.send(ctx, userID, realtime.SSEEventSessionProgress, sessionPayload(session))
}

func (n *engagementNotifier) SessionCompleted(ctx context.Context, userID uuid.UUID, session *types.WatchSession) {
	if session == nil {
		return
	}
	n.send(ctx, userID, realtime.SSEEventSessionCompleted, sessionPayload(session))
}

func (n *engagementNotifier) SessionRestarted(ctx context.Context, userID uuid.UUID, contentID string) {
	n.send(ctx, userID, realtime.SSEEventSessionRestarted, map[string]any{"content_id": contentID})
}

func (n *engagementNotifier) send(ctx context.Context, userID uuid.UUID, event realtime.SSEEvent, data map[string]any) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	n.emit.Emit(context.WithoutCancel(ctx), realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   event,
		Data:    data,
	})
}

// reflection text stays out of the stream; it is only returned to its author on request
func sessionPayload(s *types.WatchSession) map[string]any {
	return map[string]any{
		"content_id":            s.ContentID,
		"watch_duration":        s.WatchDuration,
		"total_duration":        s.TotalDuration,
		"completion_percentage": s.CompletionPercentage,
		"view_count":            s.ViewCount,
		"skip_count":            s.SkipCount,
		"state":                 s.State(),
	}
}

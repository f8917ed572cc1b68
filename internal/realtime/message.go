package realtime

import "github.com/google/uuid"

type SSEEvent string

const (
	SSEEventSessionProgress  SSEEvent = "SessionProgress"
	SSEEventSkipDetected     SSEEvent = "SkipDetected"
	SSEEventSessionCompleted SSEEvent = "SessionCompleted"
	SSEEventSessionRestarted SSEEvent = "SessionRestarted"
)

// Known reports whether e is one of the engagement events streams understand.
func (e SSEEvent) Known() bool {
	switch e {
	case SSEEventSessionProgress, SSEEventSkipDetected, SSEEventSessionCompleted, SSEEventSessionRestarted:
		return true
	}
	return false
}

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel is the channel every engagement event for userID is published on.
func UserChannel(userID uuid.UUID) string {
	return userID.String()
}

package domain

import (
	"github.com/yungbote/calmpath-backend/internal/domain/activity"
	"github.com/yungbote/calmpath-backend/internal/domain/engagement"
	"github.com/yungbote/calmpath-backend/internal/domain/profile"
)

type WatchSession = engagement.WatchSession
type SessionState = engagement.SessionState

const (
	StateNotStarted = engagement.StateNotStarted
	StateInProgress = engagement.StateInProgress
	StateCompleted  = engagement.StateCompleted
)

type ActivityBase = activity.Base
type TimelineNote = activity.TimelineNote
type PersonalLetter = activity.PersonalLetter
type SelfDescriptionAnswer = activity.SelfDescriptionAnswer
type EmotionMatchAttempt = activity.EmotionMatchAttempt
type EmotionLogEntry = activity.EmotionLogEntry

type Profile = profile.Profile

// Models lists every persisted model, in migration order.
func Models() []any {
	return []any{
		&profile.Profile{},
		&engagement.WatchSession{},
		&activity.TimelineNote{},
		&activity.PersonalLetter{},
		&activity.SelfDescriptionAnswer{},
		&activity.EmotionMatchAttempt{},
		&activity.EmotionLogEntry{},
	}
}

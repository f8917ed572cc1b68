package engagement

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionState string

const (
	StateNotStarted SessionState = "not_started"
	StateInProgress SessionState = "in_progress"
	StateCompleted  SessionState = "completed"
)

// WatchSession is the canonical progress record for one user on one piece of video
// content. There is exactly one row per (user_id, content_id).
type WatchSession struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_watch_session_user_content,priority:1" json:"user_id"`
	ContentID string    `gorm:"column:content_id;not null;uniqueIndex:idx_watch_session_user_content,priority:2" json:"content_id"`

	ContentTitle string `gorm:"column:content_title;not null;default:''" json:"content_title"`

	StartedAt   time.Time  `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	// WatchDuration is the furthest playback position ever observed, in seconds.
	WatchDuration        float64 `gorm:"column:watch_duration;not null;default:0" json:"watch_duration"`
	TotalDuration        float64 `gorm:"column:total_duration;not null;default:0" json:"total_duration"`
	LastPosition         float64 `gorm:"column:last_position;not null;default:0" json:"last_position"`
	CompletionPercentage int     `gorm:"column:completion_percentage;not null;default:0" json:"completion_percentage"`

	ViewCount int `gorm:"column:view_count;not null;default:0" json:"view_count"`
	SkipCount int `gorm:"column:skip_count;not null;default:0" json:"skip_count"`

	ReflectionText    string         `gorm:"column:reflection_text;type:text;not null;default:''" json:"reflection_text"`
	TechniquesApplied datatypes.JSON `gorm:"column:techniques_applied;type:jsonb" json:"techniques_applied"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (WatchSession) TableName() string { return "watch_session" }

func (s *WatchSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *WatchSession) State() SessionState {
	switch {
	case s == nil:
		return StateNotStarted
	case s.CompletedAt != nil:
		return StateCompleted
	case s.ViewCount > 0 || s.WatchDuration > 0 || s.LastPosition > 0:
		return StateInProgress
	default:
		return StateNotStarted
	}
}

// ComputeCompletionPercentage is round(100*watched/total) clamped to [0, 100], and 0
// while the total length is unknown.
func ComputeCompletionPercentage(watched, total float64) int {
	if total <= 0 {
		return 0
	}
	pct := int(100*watched/total + 0.5)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

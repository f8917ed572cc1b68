package profile

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Profile is the public identity of a student as shown on the leaderboard.
type Profile struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	FirstName string    `gorm:"column:first_name;not null;default:''" json:"first_name"`
	LastName  string    `gorm:"column:last_name;not null;default:''" json:"last_name"`
	Grade     string    `gorm:"column:grade;not null;default:''" json:"grade"`
	School    string    `gorm:"column:school;not null;default:''" json:"school"`
	AvatarURL string    `gorm:"column:avatar_url;not null;default:''" json:"avatar_url"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string { return "profile" }

// IsComplete reports whether every field the leaderboard needs is filled in.
func (p *Profile) IsComplete() bool {
	if p == nil {
		return false
	}
	for _, v := range []string{p.FirstName, p.LastName, p.Grade, p.School} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

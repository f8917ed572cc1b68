package activity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base holds the columns shared by every activity table.
type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TimelineNote is an entry on the user's personal life timeline.
type TimelineNote struct {
	Base
	Title      string     `gorm:"column:title;not null;default:''" json:"title"`
	Content    string     `gorm:"column:content;type:text;not null;default:''" json:"content"`
	OccurredOn *time.Time `gorm:"column:occurred_on" json:"occurred_on,omitempty"`
}

func (TimelineNote) TableName() string { return "timeline_note" }

// PersonalLetter is a letter written to oneself or someone else.
type PersonalLetter struct {
	Base
	Recipient string `gorm:"column:recipient;not null;default:''" json:"recipient"`
	Content   string `gorm:"column:content;type:text;not null;default:''" json:"content"`
}

func (PersonalLetter) TableName() string { return "personal_letter" }

// SelfDescriptionAnswer is the answer to one "who am I" prompt.
type SelfDescriptionAnswer struct {
	Base
	QuestionKey string `gorm:"column:question_key;not null;index" json:"question_key"`
	Answer      string `gorm:"column:answer;type:text;not null;default:''" json:"answer"`
}

func (SelfDescriptionAnswer) TableName() string { return "self_description_answer" }

// EmotionMatchAttempt records one try of the emotion recognition game.
type EmotionMatchAttempt struct {
	Base
	TargetEmotion   string `gorm:"column:target_emotion;not null;index" json:"target_emotion"`
	SelectedEmotion string `gorm:"column:selected_emotion;not null" json:"selected_emotion"`
	IsCorrect       bool   `gorm:"column:is_correct;not null;default:false" json:"is_correct"`
}

func (EmotionMatchAttempt) TableName() string { return "emotion_match_attempt" }

// EmotionLogEntry is one check-in in the emotion diary.
type EmotionLogEntry struct {
	Base
	Emotion   string    `gorm:"column:emotion;not null" json:"emotion"`
	Intensity int       `gorm:"column:intensity;not null;default:0" json:"intensity"`
	Note      *string   `gorm:"column:note;type:text" json:"note,omitempty"`
	LoggedAt  time.Time `gorm:"column:logged_at;not null;index" json:"logged_at"`
}

func (EmotionLogEntry) TableName() string { return "emotion_log_entry" }

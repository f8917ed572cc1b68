package scoring

import (
	"context"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryTimelineNotes   Category = "timeline_notes"
	CategoryLetters         Category = "personal_letters"
	CategorySelfDescription Category = "self_description"
	CategoryVideoSessions   Category = "video_sessions"
	CategoryEmotionMatch    Category = "emotion_match"
	CategoryEmotionLog      Category = "emotion_log"
)

// Categories is the fixed set every score is summed over, in reporting order.
var Categories = []Category{
	CategoryTimelineNotes,
	CategoryLetters,
	CategorySelfDescription,
	CategoryVideoSessions,
	CategoryEmotionMatch,
	CategoryEmotionLog,
}

// Record is one scorable activity. The set of implementations is closed; each variant
// carries only what its own formula reads.
type Record interface {
	Category() Category
	isRecord()
}

type NoteRecord struct{ Content string }

type LetterRecord struct{ Content string }

type SelfDescriptionRecord struct{ Answer string }

type VideoRecord struct {
	WatchDuration  float64
	Completed      bool
	ReflectionText string
	ViewCount      int
	SkipCount      int
}

type EmotionMatchRecord struct {
	TargetEmotion string
	Correct       bool
}

type EmotionLogRecord struct {
	// Note is nil when the entry was logged without one.
	Note *string
}

func (NoteRecord) Category() Category            { return CategoryTimelineNotes }
func (LetterRecord) Category() Category          { return CategoryLetters }
func (SelfDescriptionRecord) Category() Category { return CategorySelfDescription }
func (VideoRecord) Category() Category           { return CategoryVideoSessions }
func (EmotionMatchRecord) Category() Category    { return CategoryEmotionMatch }
func (EmotionLogRecord) Category() Category      { return CategoryEmotionLog }

func (NoteRecord) isRecord()            {}
func (LetterRecord) isRecord()          {}
func (SelfDescriptionRecord) isRecord() {}
func (VideoRecord) isRecord()           {}
func (EmotionMatchRecord) isRecord()    {}
func (EmotionLogRecord) isRecord()      {}

// Source lists one category's records for a user.
type Source interface {
	Category() Category
	ListForUser(ctx context.Context, userID uuid.UUID) ([]Record, error)
}

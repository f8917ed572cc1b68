package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/calmpath-backend/internal/data/repos/activity"
	"github.com/yungbote/calmpath-backend/internal/data/repos/engagement"
	"github.com/yungbote/calmpath-backend/internal/data/repos/profile"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
)

type WatchSessionRepo = engagement.WatchSessionRepo
type ProfileRepo = profile.ProfileRepo

type TimelineNoteRepo = activity.TimelineNoteRepo
type PersonalLetterRepo = activity.PersonalLetterRepo
type SelfDescriptionAnswerRepo = activity.SelfDescriptionAnswerRepo
type EmotionMatchAttemptRepo = activity.EmotionMatchAttemptRepo
type EmotionLogEntryRepo = activity.EmotionLogEntryRepo

func NewWatchSessionRepo(db *gorm.DB, baseLog *logger.Logger) WatchSessionRepo {
	return engagement.NewWatchSessionRepo(db, baseLog)
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return profile.NewProfileRepo(db, baseLog)
}

func NewTimelineNoteRepo(db *gorm.DB, baseLog *logger.Logger) TimelineNoteRepo {
	return activity.NewTimelineNoteRepo(db, baseLog)
}

func NewPersonalLetterRepo(db *gorm.DB, baseLog *logger.Logger) PersonalLetterRepo {
	return activity.NewPersonalLetterRepo(db, baseLog)
}

func NewSelfDescriptionAnswerRepo(db *gorm.DB, baseLog *logger.Logger) SelfDescriptionAnswerRepo {
	return activity.NewSelfDescriptionAnswerRepo(db, baseLog)
}

func NewEmotionMatchAttemptRepo(db *gorm.DB, baseLog *logger.Logger) EmotionMatchAttemptRepo {
	return activity.NewEmotionMatchAttemptRepo(db, baseLog)
}

func NewEmotionLogEntryRepo(db *gorm.DB, baseLog *logger.Logger) EmotionLogEntryRepo {
	return activity.NewEmotionLogEntryRepo(db, baseLog)
}

package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/calmpath-backend/internal/data/repos"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
)

type Repos struct {
	WatchSession repos.WatchSessionRepo
	Profile      repos.ProfileRepo

	TimelineNote          repos.TimelineNoteRepo
	PersonalLetter        repos.PersonalLetterRepo
	SelfDescriptionAnswer repos.SelfDescriptionAnswerRepo
	EmotionMatchAttempt   repos.EmotionMatchAttemptRepo
	EmotionLogEntry       repos.EmotionLogEntryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		WatchSession: repos.NewWatchSessionRepo(db, log),
		Profile:      repos.NewProfileRepo(db, log),

		TimelineNote:          repos.NewTimelineNoteRepo(db, log),
		PersonalLetter:        repos.NewPersonalLetterRepo(db, log),
		SelfDescriptionAnswer: repos.NewSelfDescriptionAnswerRepo(db, log),
		EmotionMatchAttempt:   repos.NewEmotionMatchAttemptRepo(db, log),
		EmotionLogEntry:       repos.NewEmotionLogEntryRepo(db, log),
	}
}

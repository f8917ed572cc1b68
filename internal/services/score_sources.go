package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/calmpath-backend/internal/data/repos"
	types "github.com/yungbote/calmpath-backend/internal/domain"
	"github.com/yungbote/calmpath-backend/internal/modules/scoring"
	"github.com/yungbote/calmpath-backend/internal/platform/dbctx"
)

// listFunc adapts a repo's per-user listing into a scoring source.
type listFunc[T any] struct {
	category scoring.Category
	list     func(dbc dbctx.Context, userID uuid.UUID) ([]*T, error)
	convert  func(*T) scoring.Record
}

func (s listFunc[T]) Category() scoring.Category { return s.category }

func (s listFunc[T]) ListForUser(ctx context.Context, userID uuid.UUID) ([]scoring.Record, error) {
	rows, err := s.list(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, err
	}
	out := make([]scoring.Record, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			out = append(out, s.convert(row))
		}
	}
	return out, nil
}

type ScoreSourceDeps struct {
	Sessions         WatchSessionService
	Notes            repos.TimelineNoteRepo
	Letters          repos.PersonalLetterRepo
	SelfDescriptions repos.SelfDescriptionAnswerRepo
	EmotionMatches   repos.EmotionMatchAttemptRepo
	EmotionLogs      repos.EmotionLogEntryRepo
}

// NewScoreSources returns one source per scoring category.
func NewScoreSources(d ScoreSourceDeps) []scoring.Source {
	return []scoring.Source{
		listFunc[types.TimelineNote]{
			category: scoring.CategoryTimelineNotes,
			list:     d.Notes.ListByUser,
			convert: func(n *types.TimelineNote) scoring.Record {
				return scoring.NoteRecord{Content: n.Content}
			},
		},
		listFunc[types.PersonalLetter]{
			category: scoring.CategoryLetters,
			list:     d.Letters.ListByUser,
			convert: func(l *types.PersonalLetter) scoring.Record {
				return scoring.LetterRecord{Content: l.Content}
			},
		},
		listFunc[types.SelfDescriptionAnswer]{
			category: scoring.CategorySelfDescription,
			list:     d.SelfDescriptions.ListByUser,
			convert: func(a *types.SelfDescriptionAnswer) scoring.Record {
				return scoring.SelfDescriptionRecord{Answer: a.Answer}
			},
		},
		listFunc[types.WatchSession]{
			category: scoring.CategoryVideoSessions,
			list:     d.Sessions.ListForUser,
			convert:  sessionRecord,
		},
		listFunc[types.EmotionMatchAttempt]{
			category: scoring.CategoryEmotionMatch,
			list:     d.EmotionMatches.ListByUser,
			convert: func(a *types.EmotionMatchAttempt) scoring.Record {
				return scoring.EmotionMatchRecord{TargetEmotion: a.TargetEmotion, Correct: a.IsCorrect}
			},
		},
		listFunc[types.EmotionLogEntry]{
			category: scoring.CategoryEmotionLog,
			list:     d.EmotionLogs.ListByUser,
			convert: func(e *types.EmotionLogEntry) scoring.Record {
				return scoring.EmotionLogRecord{Note: e.Note}
			},
		},
	}
}

func sessionRecord(s *types.WatchSession) scoring.Record {
	return scoring.VideoRecord{
		WatchDuration:  s.WatchDuration,
		Completed:      s.CompletedAt != nil,
		ReflectionText: s.ReflectionText,
		ViewCount:      s.ViewCount,
		SkipCount:      s.SkipCount,
	}
}

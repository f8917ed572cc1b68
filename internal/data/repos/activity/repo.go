package activity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/calmpath-backend/internal/domain"
	"github.com/yungbote/calmpath-backend/internal/platform/dbctx"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
)

// Repo is the read/write surface shared by every activity category. Writes exist for
// the editors that own these records; scoring only lists.
type Repo[T any] interface {
	Create(dbc dbctx.Context, rows []*T) ([]*T, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*T, error)
}

type TimelineNoteRepo = Repo[types.TimelineNote]
type PersonalLetterRepo = Repo[types.PersonalLetter]
type SelfDescriptionAnswerRepo = Repo[types.SelfDescriptionAnswer]
type EmotionMatchAttemptRepo = Repo[types.EmotionMatchAttempt]
type EmotionLogEntryRepo = Repo[types.EmotionLogEntry]

func NewTimelineNoteRepo(db *gorm.DB, baseLog *logger.Logger) TimelineNoteRepo {
	return newRepo[types.TimelineNote](db, baseLog, "TimelineNoteRepo", "created_at ASC")
}

func NewPersonalLetterRepo(db *gorm.DB, baseLog *logger.Logger) PersonalLetterRepo {
	return newRepo[types.PersonalLetter](db, baseLog, "PersonalLetterRepo", "created_at ASC")
}

func NewSelfDescriptionAnswerRepo(db *gorm.DB, baseLog *logger.Logger) SelfDescriptionAnswerRepo {
	return newRepo[types.SelfDescriptionAnswer](db, baseLog, "SelfDescriptionAnswerRepo", "question_key ASC")
}

func NewEmotionMatchAttemptRepo(db *gorm.DB, baseLog *logger.Logger) EmotionMatchAttemptRepo {
	return newRepo[types.EmotionMatchAttempt](db, baseLog, "EmotionMatchAttemptRepo", "created_at ASC")
}

func NewEmotionLogEntryRepo(db *gorm.DB, baseLog *logger.Logger) EmotionLogEntryRepo {
	return newRepo[types.EmotionLogEntry](db, baseLog, "EmotionLogEntryRepo", "logged_at ASC")
}

type repo[T any] struct {
	db    *gorm.DB
	log   *logger.Logger
	order string
}

func newRepo[T any](db *gorm.DB, baseLog *logger.Logger, name, order string) *repo[T] {
	return &repo[T]{
		db:    db,
		log:   baseLog.With("repo", name),
		order: order,
	}
}

func (r *repo[T]) Create(dbc dbctx.Context, rows []*T) ([]*T, error) {
	if len(rows) == 0 {
		return []*T{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo[T]) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*T, error) {
	var out []*T
	if userID == uuid.Nil {
		return out, nil
	}
	started := time.Now()
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order(r.order).
		Find(&out).Error; err != nil {
		return nil, err
	}
	r.log.Debug("listed activity rows", "count", len(out), "duration_ms", time.Since(started).Milliseconds())
	return out, nil
}

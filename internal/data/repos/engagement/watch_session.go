package engagement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/calmpath-backend/internal/data/db"
	types "github.com/yungbote/calmpath-backend/internal/domain"
	"github.com/yungbote/calmpath-backend/internal/platform/dbctx"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
)

// WatchSessionRepo is the keyed store behind the watch-session manager. Every counter
// and multi-field transition is a single statement so concurrent callers cannot lose
// each other's writes.
type WatchSessionRepo interface {
	Get(dbc dbctx.Context, userID uuid.UUID, contentID string) (*types.WatchSession, error)
	InsertIfAbsent(dbc dbctx.Context, row *types.WatchSession) error
	Upsert(dbc dbctx.Context, row *types.WatchSession, columns []string) error
	UpdateFields(dbc dbctx.Context, userID uuid.UUID, contentID string, updates map[string]any) (bool, error)
	IncrementSkipCount(dbc dbctx.Context, userID uuid.UUID, contentID string, by int) (bool, error)
	Restart(dbc dbctx.Context, userID uuid.UUID, contentID string, at time.Time) (bool, error)
	BeginView(dbc dbctx.Context, userID uuid.UUID, contentID string, at time.Time) (bool, error)
	MarkCompleted(dbc dbctx.Context, userID uuid.UUID, contentID string, at time.Time) (bool, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.WatchSession, error)
}

// Columns that only ever move forward; upserts keep the larger of stored and incoming.
// completion_percentage is derived from watch_duration and total_duration by the caller.
var highWaterColumns = map[string]bool{
	"watch_duration": true,
}

const maxTransientRetries = 3

type watchSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWatchSessionRepo(db *gorm.DB, baseLog *logger.Logger) WatchSessionRepo {
	return &watchSessionRepo{
		db:  db,
		log: baseLog.With("repo", "WatchSessionRepo"),
	}
}

func (r *watchSessionRepo) Get(dbc dbctx.Context, userID uuid.UUID, contentID string) (*types.WatchSession, error) {
	if userID == uuid.Nil || contentID == "" {
		return nil, nil
	}
	var row types.WatchSession
	if err := dbc.DB(r.db).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *watchSessionRepo) InsertIfAbsent(dbc dbctx.Context, row *types.WatchSession) error {
	if row == nil || row.UserID == uuid.Nil || row.ContentID == "" {
		return nil
	}
	stampTimes(row)
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_id"}},
			DoNothing: true,
		}).
		Create(row).Error
}

func (r *watchSessionRepo) Upsert(dbc dbctx.Context, row *types.WatchSession, columns []string) error {
	if row == nil || row.UserID == uuid.Nil || row.ContentID == "" {
		return nil
	}
	stampTimes(row)
	t := dbc.DB(r.db)
	dialect := t.Dialector.Name()

	set := make(clause.Set, 0, len(columns)+1)
	seen := map[string]bool{}
	cols := append(append(make([]string, 0, len(columns)+1), columns...), "updated_at")
	for _, col := range cols {
		col = strings.TrimSpace(col)
		if col == "" || seen[col] {
			continue
		}
		seen[col] = true
		if highWaterColumns[col] {
			set = append(set, clause.Assignment{
				Column: clause.Column{Name: col},
				Value:  gorm.Expr(greatest(dialect, types.WatchSession{}.TableName()+"."+col, "excluded."+col)),
			})
			continue
		}
		set = append(set, clause.Assignment{
			Column: clause.Column{Name: col},
			Value:  clause.Column{Table: "excluded", Name: col},
		})
	}

	return t.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_id"}},
		DoUpdates: set,
	}).Create(row).Error
}

func (r *watchSessionRepo) UpdateFields(dbc dbctx.Context, userID uuid.UUID, contentID string, updates map[string]any) (bool, error) {
	if userID == uuid.Nil || contentID == "" {
		return false, nil
	}
	if updates == nil {
		updates = map[string]any{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := dbc.DB(r.db).
		Model(&types.WatchSession{}).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *watchSessionRepo) IncrementSkipCount(dbc dbctx.Context, userID uuid.UUID, contentID string, by int) (bool, error) {
	if by <= 0 {
		return false, nil
	}
	var (
		ok  bool
		err error
	)
	for attempt := 0; attempt < maxTransientRetries; attempt++ {
		ok, err = r.UpdateFields(dbc, userID, contentID, map[string]any{
			"skip_count": gorm.Expr("skip_count + ?", by),
		})
		if err == nil || !db.IsTransient(err) {
			break
		}
		r.log.Warn("skip increment hit a transient error, retrying", "attempt", attempt+1, "error", err)
	}
	return ok, err
}

func (r *watchSessionRepo) Restart(dbc dbctx.Context, userID uuid.UUID, contentID string, at time.Time) (bool, error) {
	at = at.UTC()
	return r.UpdateFields(dbc, userID, contentID, map[string]any{
		"started_at":    at,
		"completed_at":  nil,
		"last_position": 0,
		"view_count":    gorm.Expr("view_count + 1"),
		"updated_at":    at,
	})
}

func (r *watchSessionRepo) BeginView(dbc dbctx.Context, userID uuid.UUID, contentID string, at time.Time) (bool, error) {
	if userID == uuid.Nil || contentID == "" {
		return false, nil
	}
	at = at.UTC()
	res := dbc.DB(r.db).
		Model(&types.WatchSession{}).
		Where("user_id = ? AND content_id = ? AND view_count = 0", userID, contentID).
		Updates(map[string]any{
			"view_count": 1,
			"started_at": at,
			"updated_at": at,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *watchSessionRepo) MarkCompleted(dbc dbctx.Context, userID uuid.UUID, contentID string, at time.Time) (bool, error) {
	if userID == uuid.Nil || contentID == "" {
		return false, nil
	}
	at = at.UTC()
	res := dbc.DB(r.db).
		Model(&types.WatchSession{}).
		Where("user_id = ? AND content_id = ? AND completed_at IS NULL", userID, contentID).
		Updates(map[string]any{
			"completed_at": at,
			"updated_at":   at,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *watchSessionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.WatchSession, error) {
	var out []*types.WatchSession
	if userID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func greatest(dialect, a, b string) string {
	if dialect == "sqlite" {
		return fmt.Sprintf("MAX(%s, %s)", a, b)
	}
	return fmt.Sprintf("GREATEST(%s, %s)", a, b)
}

func stampTimes(row *types.WatchSession) {
	now := time.Now().UTC()
	if row.StartedAt.IsZero() {
		row.StartedAt = now
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
}

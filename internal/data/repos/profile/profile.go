package profile

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/calmpath-backend/internal/domain"
	"github.com/yungbote/calmpath-backend/internal/platform/dbctx"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
)

type ProfileRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.Profile) error
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error)
	// ListRoster returns every profile in account-creation order.
	ListRoster(dbc dbctx.Context) ([]*types.Profile, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{
		db:  db,
		log: baseLog.With("repo", "ProfileRepo"),
	}
}

func (r *profileRepo) Upsert(dbc dbctx.Context, rows []*types.Profile) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, p := range rows {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "grade", "school", "avatar_url", "updated_at"}),
		}).
		Create(&rows).Error
}

func (r *profileRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.Profile
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.UserID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *profileRepo) ListRoster(dbc dbctx.Context) ([]*types.Profile, error) {
	var out []*types.Profile
	if err := dbc.DB(r.db).
		Order("created_at ASC").
		Order("user_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

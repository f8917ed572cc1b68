package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/calmpath-backend/internal/domain"
)

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, first, last string, createdAt time.Time) *types.Profile {
	tb.Helper()
	p := &types.Profile{
		UserID:    uuid.New(),
		FirstName: first,
		LastName:  last,
		Grade:     "3ro",
		School:    "Colegio Central",
		CreatedAt: createdAt,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedWatchSession(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentID string, mutate func(*types.WatchSession)) *types.WatchSession {
	tb.Helper()
	now := time.Now().UTC()
	s := &types.WatchSession{
		UserID:       userID,
		ContentID:    contentID,
		ContentTitle: contentID,
		StartedAt:    now,
	}
	if mutate != nil {
		mutate(s)
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed watch session: %v", err)
	}
	return s
}

func PtrTime(v time.Time) *time.Time { return &v }

func PtrString(v string) *string { return &v }

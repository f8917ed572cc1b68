package profile

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/calmpath-backend/internal/data/repos/testutil"
	types "github.com/yungbote/calmpath-backend/internal/domain"
	"github.com/yungbote/calmpath-backend/internal/platform/dbctx"
)

func TestProfileRepo_ListRosterUsesCreationOrder(t *testing.T) {
	db := testutil.DB(t)
	repo := NewProfileRepo(db, testutil.Logger(t))
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	third := testutil.SeedProfile(t, ctx, db, "Carla", "Ruiz", base.Add(2*time.Hour))
	first := testutil.SeedProfile(t, ctx, db, "Ana", "Lopez", base)
	second := testutil.SeedProfile(t, ctx, db, "Bruno", "Diaz", base.Add(time.Hour))

	got, err := repo.ListRoster(dbctx.Context{Ctx: ctx})
	if err != nil {
		t.Fatalf("ListRoster: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(got))
	}
	want := []*types.Profile{first, second, third}
	for i := range want {
		if got[i].UserID != want[i].UserID {
			t.Fatalf("position %d: want=%s got=%s", i, want[i].FirstName, got[i].FirstName)
		}
	}
}

func TestProfileRepo_UpsertUpdatesInPlace(t *testing.T) {
	db := testutil.DB(t)
	repo := NewProfileRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	p := testutil.SeedProfile(t, dbc.Ctx, db, "Ana", "Lopez", time.Now().Add(-time.Hour))
	if err := repo.Upsert(dbc, []*types.Profile{{UserID: p.UserID, FirstName: "Ana", LastName: "Lopez", Grade: "4to", School: "Colegio Norte"}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := repo.GetByUserID(dbc, p.UserID)
	if err != nil || got == nil {
		t.Fatalf("GetByUserID: %v %v", got, err)
	}
	if got.Grade != "4to" || got.School != "Colegio Norte" {
		t.Fatalf("upsert did not update: %+v", got)
	}
	if !got.IsComplete() {
		t.Fatalf("expected complete profile")
	}
}

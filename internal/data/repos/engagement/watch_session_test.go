package engagement

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/calmpath-backend/internal/data/repos/testutil"
	types "github.com/yungbote/calmpath-backend/internal/domain"
	"github.com/yungbote/calmpath-backend/internal/platform/dbctx"
)

func TestWatchSessionRepo_InsertIfAbsentKeepsOneRow(t *testing.T) {
	db := testutil.DB(t)
	repo := NewWatchSessionRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}
	userID := uuid.New()

	first := &types.WatchSession{UserID: userID, ContentID: "respira", ContentTitle: "Respira", TechniquesApplied: datatypes.JSON("[]")}
	if err := repo.InsertIfAbsent(dbc, first); err != nil {
		t.Fatalf("InsertIfAbsent: %v", err)
	}
	second := &types.WatchSession{UserID: userID, ContentID: "respira", ContentTitle: "other title", SkipCount: 9}
	if err := repo.InsertIfAbsent(dbc, second); err != nil {
		t.Fatalf("InsertIfAbsent (dup): %v", err)
	}

	var count int64
	if err := db.Model(&types.WatchSession{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one row, got %d", count)
	}
	got, err := repo.Get(dbc, userID, "respira")
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	if got.ContentTitle != "Respira" || got.SkipCount != 0 {
		t.Fatalf("second insert must not overwrite: %+v", got)
	}

	missing, err := repo.Get(dbc, userID, "nope")
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing session")
	}
}

func TestWatchSessionRepo_UpsertNeverLowersWatchDuration(t *testing.T) {
	db := testutil.DB(t)
	repo := NewWatchSessionRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}
	userID := uuid.New()
	cols := []string{"watch_duration", "last_position", "completion_percentage", "total_duration"}

	row := &types.WatchSession{UserID: userID, ContentID: "calma", WatchDuration: 300, LastPosition: 300, TotalDuration: 600, CompletionPercentage: 50}
	if err := repo.Upsert(dbc, row, cols); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	stale := &types.WatchSession{UserID: userID, ContentID: "calma", WatchDuration: 120, LastPosition: 120, TotalDuration: 600, CompletionPercentage: 50}
	if err := repo.Upsert(dbc, stale, cols); err != nil {
		t.Fatalf("Upsert stale: %v", err)
	}

	got, err := repo.Get(dbc, userID, "calma")
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	if got.WatchDuration != 300 {
		t.Fatalf("watch_duration decreased: %v", got.WatchDuration)
	}
	if got.LastPosition != 120 {
		t.Fatalf("last_position should follow the latest write, got %v", got.LastPosition)
	}
}

func TestWatchSessionRepo_UpsertWritesCompletionAsGiven(t *testing.T) {
	db := testutil.DB(t)
	repo := NewWatchSessionRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}
	userID := uuid.New()
	cols := []string{"watch_duration", "completion_percentage", "total_duration"}

	if err := repo.Upsert(dbc, &types.WatchSession{UserID: userID, ContentID: "respira", WatchDuration: 60, TotalDuration: 100, CompletionPercentage: 60}, cols); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(dbc, &types.WatchSession{UserID: userID, ContentID: "respira", WatchDuration: 60, TotalDuration: 600, CompletionPercentage: 10}, cols); err != nil {
		t.Fatalf("Upsert longer total: %v", err)
	}
	got, err := repo.Get(dbc, userID, "respira")
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	if got.CompletionPercentage != 10 || got.TotalDuration != 600 {
		t.Fatalf("completion should follow the latest total: pct=%d total=%v", got.CompletionPercentage, got.TotalDuration)
	}
}

func TestWatchSessionRepo_ConcurrentSkipIncrementsAreNotLost(t *testing.T) {
	db := testutil.DB(t)
	repo := NewWatchSessionRepo(db, testutil.Logger(t))
	ctx := context.Background()
	userID := uuid.New()
	testutil.SeedWatchSession(t, ctx, db, userID, "ira", nil)

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.IncrementSkipCount(dbctx.Context{Ctx: ctx}, userID, "ira", 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("IncrementSkipCount: %v", err)
	}

	got, err := repo.Get(dbctx.Context{Ctx: ctx}, userID, "ira")
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	if got.SkipCount != n {
		t.Fatalf("skip_count: want=%d got=%d", n, got.SkipCount)
	}
}

func TestWatchSessionRepo_RestartTransition(t *testing.T) {
	db := testutil.DB(t)
	repo := NewWatchSessionRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	userID := uuid.New()
	done := time.Now().Add(-time.Hour).UTC()
	testutil.SeedWatchSession(t, ctx, db, userID, "meditacion-1", func(s *types.WatchSession) {
		s.WatchDuration = 600
		s.TotalDuration = 600
		s.LastPosition = 600
		s.CompletionPercentage = 100
		s.ViewCount = 1
		s.SkipCount = 2
		s.CompletedAt = &done
	})

	ok, err := repo.Restart(dbc, userID, "meditacion-1", time.Now())
	if err != nil || !ok {
		t.Fatalf("Restart: ok=%v err=%v", ok, err)
	}
	got, err := repo.Get(dbc, userID, "meditacion-1")
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	if got.ViewCount != 2 || got.CompletedAt != nil || got.LastPosition != 0 {
		t.Fatalf("unexpected restart result: view=%d completed=%v last=%v", got.ViewCount, got.CompletedAt, got.LastPosition)
	}
	if got.WatchDuration != 600 || got.CompletionPercentage != 100 || got.SkipCount != 2 {
		t.Fatalf("restart must keep high-water fields: %+v", got)
	}

	ok, err = repo.Restart(dbc, userID, "missing", time.Now())
	if err != nil {
		t.Fatalf("Restart missing: %v", err)
	}
	if ok {
		t.Fatalf("restart of a missing session should report false")
	}
}

func TestWatchSessionRepo_BeginViewAndMarkCompletedAreOneShot(t *testing.T) {
	db := testutil.DB(t)
	repo := NewWatchSessionRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	userID := uuid.New()
	testutil.SeedWatchSession(t, ctx, db, userID, "c1", nil)

	if ok, err := repo.BeginView(dbc, userID, "c1", time.Now()); err != nil || !ok {
		t.Fatalf("BeginView first: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.BeginView(dbc, userID, "c1", time.Now()); err != nil || ok {
		t.Fatalf("BeginView second should be a no-op: ok=%v err=%v", ok, err)
	}
	first := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	if ok, err := repo.MarkCompleted(dbc, userID, "c1", first); err != nil || !ok {
		t.Fatalf("MarkCompleted: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.MarkCompleted(dbc, userID, "c1", time.Now()); err != nil || ok {
		t.Fatalf("MarkCompleted twice should keep the first stamp: ok=%v err=%v", ok, err)
	}

	got, err := repo.Get(dbc, userID, "c1")
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	if got.ViewCount != 1 {
		t.Fatalf("view_count: want=1 got=%d", got.ViewCount)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(first) {
		t.Fatalf("completed_at: want=%v got=%v", first, got.CompletedAt)
	}

	list, err := repo.ListByUser(dbc, userID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 1 || list[0].ContentID != "c1" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

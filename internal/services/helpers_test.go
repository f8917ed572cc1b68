package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/calmpath-backend/internal/data/repos"
	"github.com/yungbote/calmpath-backend/internal/data/repos/testutil"
	types "github.com/yungbote/calmpath-backend/internal/domain"
	"github.com/yungbote/calmpath-backend/internal/platform/dbctx"
	"github.com/yungbote/calmpath-backend/internal/platform/identity"
	"github.com/yungbote/calmpath-backend/internal/realtime"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []realtime.SSEEvent
}

func (n *recordingNotifier) add(ev realtime.SSEEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) count(ev realtime.SSEEvent) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e == ev {
			c++
		}
	}
	return c
}

func (n *recordingNotifier) SkipDetected(ctx context.Context, userID uuid.UUID, contentID string) {
	n.add(realtime.SSEEventSkipDetected)
}
func (n *recordingNotifier) SessionProgress(ctx context.Context, userID uuid.UUID, s *types.WatchSession) {
	n.add(realtime.SSEEventSessionProgress)
}
func (n *recordingNotifier) SessionCompleted(ctx context.Context, userID uuid.UUID, s *types.WatchSession) {
	n.add(realtime.SSEEventSessionCompleted)
}
func (n *recordingNotifier) SessionRestarted(ctx context.Context, userID uuid.UUID, contentID string) {
	n.add(realtime.SSEEventSessionRestarted)
}

type sessionHarness struct {
	db       *gorm.DB
	repo     repos.WatchSessionRepo
	svc      WatchSessionService
	notifier *recordingNotifier
	who      identity.Identity
	dbc      dbctx.Context
}

func newSessionHarness(t *testing.T) *sessionHarness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	repo := repos.NewWatchSessionRepo(db, log)
	n := &recordingNotifier{}
	return &sessionHarness{
		db:       db,
		repo:     repo,
		svc:      NewWatchSessionService(db, log, repo, n),
		notifier: n,
		who:      identity.Identity{UserID: uuid.New(), SessionID: uuid.New()},
		dbc:      dbctx.Context{Ctx: context.Background()},
	}
}

func (h *sessionHarness) get(t *testing.T, contentID string) *types.WatchSession {
	t.Helper()
	row, err := h.repo.Get(h.dbc, h.who.UserID, contentID)
	if err != nil {
		t.Fatalf("repo.Get: %v", err)
	}
	if row == nil {
		t.Fatalf("expected session %q to exist", contentID)
	}
	return row
}

func f64(v float64) *float64 { return &v }

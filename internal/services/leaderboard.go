package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/calmpath-backend/internal/data/repos"
	"github.com/yungbote/calmpath-backend/internal/modules/leaderboard"
	"github.com/yungbote/calmpath-backend/internal/modules/scoring"
	"github.com/yungbote/calmpath-backend/internal/observability"
	"github.com/yungbote/calmpath-backend/internal/platform/dbctx"
	"github.com/yungbote/calmpath-backend/internal/platform/identity"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
)

const DefaultLeaderboardConcurrency = 8

type LeaderboardService interface {
	// Board ranks every eligible user and returns rows already redacted for who.
	Board(dbc dbctx.Context, who identity.Identity) ([]leaderboard.Entry, error)
}

type leaderboardService struct {
	log         *logger.Logger
	profiles    repos.ProfileRepo
	scores      ScoreService
	rules       scoring.Rules
	concurrency int
}

func NewLeaderboardService(baseLog *logger.Logger, profiles repos.ProfileRepo, scores ScoreService, rules scoring.Rules, concurrency int) LeaderboardService {
	if concurrency <= 0 {
		concurrency = DefaultLeaderboardConcurrency
	}
	return &leaderboardService{
		log:         baseLog.With("service", "LeaderboardService"),
		profiles:    profiles,
		scores:      scores,
		rules:       rules,
		concurrency: concurrency,
	}
}

func (s *leaderboardService) Board(dbc dbctx.Context, who identity.Identity) ([]leaderboard.Entry, error) {
	if !who.Valid() {
		return nil, ErrUnauthorized
	}
	ctx := dbc.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := observability.Tracer().Start(ctx, "leaderboard.board")
	defer span.End()

	roster, err := s.profiles.ListRoster(dbctx.Context{Ctx: ctx, Tx: dbc.Tx})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "roster unavailable")
		return nil, storeError("list roster", err)
	}
	eligible := leaderboard.Eligible(roster)
	span.SetAttributes(
		attribute.Int("leaderboard.roster", len(roster)),
		attribute.Int("leaderboard.eligible", len(eligible)),
	)

	started := time.Now()
	rows := make([]leaderboard.Scored, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, p := range eligible {
		rows[i] = leaderboard.Scored{Profile: p, Total: 0, Level: s.rules.LevelFor(0)}
		g.Go(func() error {
			b, err := s.scores.ScoreUser(gctx, p.UserID)
			if err != nil {
				s.log.Warn("user score failed; ranking as zero", "user_id", p.UserID, "error", err)
				return nil
			}
			rows[i].Total = b.Total
			rows[i].Level = b.Level
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := leaderboard.Rank(rows, who.UserID)
	s.log.Debug("leaderboard ranked",
		"user_id", who.UserID,
		"rows", len(out),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return out, nil
}

package services

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/calmpath-backend/internal/modules/scoring"
	"github.com/yungbote/calmpath-backend/internal/observability"
	"github.com/yungbote/calmpath-backend/internal/platform/dbctx"
	"github.com/yungbote/calmpath-backend/internal/platform/identity"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
)

type ScoreService interface {
	// Me returns the caller's own breakdown.
	Me(dbc dbctx.Context, who identity.Identity) (scoring.Breakdown, error)
	// ScoreUser computes any user's true score. Results must not leave the process
	// unredacted except to their owner.
	ScoreUser(ctx context.Context, userID uuid.UUID) (scoring.Breakdown, error)
}

type scoreService struct {
	log *logger.Logger
	agg *scoring.Aggregator
}

func NewScoreService(baseLog *logger.Logger, rules scoring.Rules, sources []scoring.Source) ScoreService {
	log := baseLog.With("service", "ScoreService")
	return &scoreService{
		log: log,
		agg: scoring.NewAggregator(rules, log, sources...),
	}
}

func (s *scoreService) Me(dbc dbctx.Context, who identity.Identity) (scoring.Breakdown, error) {
	if !who.Valid() {
		return scoring.Breakdown{}, ErrUnauthorized
	}
	ctx := dbc.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return s.ScoreUser(ctx, who.UserID)
}

func (s *scoreService) ScoreUser(ctx context.Context, userID uuid.UUID) (scoring.Breakdown, error) {
	ctx, span := observability.Tracer().Start(ctx, "score.user")
	defer span.End()

	out, err := s.agg.Score(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "score failed")
		return scoring.Breakdown{}, err
	}
	span.SetAttributes(attribute.String("score.level", string(out.Level)))
	return out, nil
}

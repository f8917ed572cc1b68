package scoring

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/calmpath-backend/internal/platform/logger"
)

type CategoryPoints struct {
	Category Category `json:"category"`
	Points   int      `json:"points"`
	Records  int      `json:"records"`
	Failed   bool     `json:"failed,omitempty"`
}

// Breakdown is a user's score as computed for one request. It is never stored.
type Breakdown struct {
	UserID     uuid.UUID        `json:"user_id"`
	Categories []CategoryPoints `json:"categories"`
	RawTotal   int              `json:"raw_total"`
	Total      int              `json:"total"`
	Level      Level            `json:"level"`
}

type Aggregator struct {
	rules   Rules
	sources map[Category]Source
	log     *logger.Logger
}

func NewAggregator(rules Rules, log *logger.Logger, sources ...Source) *Aggregator {
	bySource := make(map[Category]Source, len(sources))
	for _, s := range sources {
		if s != nil {
			bySource[s.Category()] = s
		}
	}
	return &Aggregator{
		rules:   rules,
		sources: bySource,
		log:     log.With("module", "scoring"),
	}
}

func (a *Aggregator) Rules() Rules { return a.rules }

// Score sums every category for userID. Categories load concurrently; one that fails
// to load is logged and counted as zero. The only error returned is the caller's
// context ending.
func (a *Aggregator) Score(ctx context.Context, userID uuid.UUID) (Breakdown, error) {
	if err := ctx.Err(); err != nil {
		return Breakdown{}, err
	}
	results := make([]CategoryPoints, len(Categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range Categories {
		results[i] = CategoryPoints{Category: c}
		src, ok := a.sources[c]
		if !ok {
			continue
		}
		g.Go(func() error {
			started := time.Now()
			records, err := src.ListForUser(gctx, userID)
			if err != nil {
				a.log.Warn("category load failed; scoring as zero",
					"category", c,
					"user_id", userID,
					"error", err,
				)
				results[i].Failed = true
				return nil
			}
			results[i].Records = len(records)
			results[i].Points = a.rules.Points(c, records)
			a.log.Debug("category scored",
				"category", c,
				"user_id", userID,
				"records", len(records),
				"points", results[i].Points,
				"duration_ms", time.Since(started).Milliseconds(),
			)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Breakdown{}, err
	}

	raw := 0
	for _, r := range results {
		raw += r.Points
	}
	total := a.rules.Finalize(raw)
	return Breakdown{
		UserID:     userID,
		Categories: results,
		RawTotal:   raw,
		Total:      total,
		Level:      a.rules.LevelFor(total),
	}, nil
}

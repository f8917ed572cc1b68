package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/calmpath-backend/internal/http/response"
	"github.com/yungbote/calmpath-backend/internal/modules/leaderboard"
	"github.com/yungbote/calmpath-backend/internal/platform/dbctx"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
	"github.com/yungbote/calmpath-backend/internal/services"
)

type ScoreHandler struct {
	log         *logger.Logger
	scores      services.ScoreService
	leaderboard services.LeaderboardService
}

func NewScoreHandler(log *logger.Logger, scores services.ScoreService, leaderboard services.LeaderboardService) *ScoreHandler {
	return &ScoreHandler{
		log:         log.With("handler", "ScoreHandler"),
		scores:      scores,
		leaderboard: leaderboard,
	}
}

// GET /api/score/me
func (h *ScoreHandler) Me(c *gin.Context) {
	who, ok := requireIdentity(c)
	if !ok {
		return
	}
	b, err := h.scores.Me(dbctx.Context{Ctx: c.Request.Context()}, who)
	if err != nil {
		respondServiceError(c, h.log, err, "score_failed")
		return
	}
	response.RespondOK(c, b)
}

// GET /api/leaderboard
func (h *ScoreHandler) Leaderboard(c *gin.Context) {
	who, ok := requireIdentity(c)
	if !ok {
		return
	}
	rows, err := h.leaderboard.Board(dbctx.Context{Ctx: c.Request.Context()}, who)
	if err != nil {
		respondServiceError(c, h.log, err, "leaderboard_failed")
		return
	}
	if rows == nil {
		rows = []leaderboard.Entry{}
	}
	response.RespondOK(c, gin.H{"entries": rows})
}

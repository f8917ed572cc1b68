package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/calmpath-backend/internal/domain"
	"github.com/yungbote/calmpath-backend/internal/http/response"
	"github.com/yungbote/calmpath-backend/internal/modules/engagement"
	"github.com/yungbote/calmpath-backend/internal/platform/dbctx"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
	"github.com/yungbote/calmpath-backend/internal/services"
)

// maxEventsPerBatch bounds one POST of player events.
const maxEventsPerBatch = 500

type WatchSessionHandler struct {
	log      *logger.Logger
	sessions services.WatchSessionService
	playback services.PlaybackService
}

func NewWatchSessionHandler(log *logger.Logger, sessions services.WatchSessionService, playback services.PlaybackService) *WatchSessionHandler {
	return &WatchSessionHandler{
		log:      log.With("handler", "WatchSessionHandler"),
		sessions: sessions,
		playback: playback,
	}
}

type watchSessionView struct {
	Session *types.WatchSession `json:"session"`
	State   types.SessionState  `json:"state"`
}

func sessionView(s *types.WatchSession) watchSessionView {
	return watchSessionView{Session: s, State: s.State()}
}

type patchWatchSessionRequest struct {
	ContentTitle      string    `json:"content_title"`
	WatchDuration     *float64  `json:"watch_duration"`
	TotalDuration     *float64  `json:"total_duration"`
	LastPosition      *float64  `json:"last_position"`
	ReflectionText    *string   `json:"reflection_text"`
	TechniquesApplied *[]string `json:"techniques_applied"`
}

type playbackEventsRequest struct {
	ContentTitle string             `json:"content_title"`
	Events       []engagement.Event `json:"events"`
}

type reflectionRequest struct {
	ReflectionText string `json:"reflection_text"`
}

type techniquesRequest struct {
	TechniquesApplied []string `json:"techniques_applied"`
}

// GET /api/watch-sessions/:content_id?title=
func (h *WatchSessionHandler) Get(c *gin.Context) {
	who, ok := requireIdentity(c)
	if !ok {
		return
	}
	s, err := h.sessions.GetOrCreate(dbctx.Context{Ctx: c.Request.Context()}, who, c.Param("content_id"), c.Query("title"))
	if err != nil {
		respondServiceError(c, h.log, err, "get_watch_session_failed")
		return
	}
	response.RespondOK(c, sessionView(s))
}

// PATCH /api/watch-sessions/:content_id
func (h *WatchSessionHandler) Patch(c *gin.Context) {
	who, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req patchWatchSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	title := req.ContentTitle
	if title == "" {
		title = c.Query("title")
	}
	s, err := h.sessions.Update(dbctx.Context{Ctx: c.Request.Context()}, who, c.Param("content_id"), title, services.WatchSessionUpdate{
		WatchDuration:     req.WatchDuration,
		TotalDuration:     req.TotalDuration,
		LastPosition:      req.LastPosition,
		ReflectionText:    req.ReflectionText,
		TechniquesApplied: req.TechniquesApplied,
	})
	if err != nil {
		respondServiceError(c, h.log, err, "update_watch_session_failed")
		return
	}
	response.RespondOK(c, sessionView(s))
}

// POST /api/watch-sessions/:content_id/events
func (h *WatchSessionHandler) Events(c *gin.Context) {
	who, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req playbackEventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if len(req.Events) > maxEventsPerBatch {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "too_many_events", errors.New("too many events in one batch"))
		return
	}
	title := req.ContentTitle
	if title == "" {
		title = c.Query("title")
	}
	res, err := h.playback.ApplyBatch(dbctx.Context{Ctx: c.Request.Context()}, who, c.Param("content_id"), title, req.Events)
	if err != nil {
		respondServiceError(c, h.log, err, "apply_playback_events_failed")
		return
	}
	response.RespondOK(c, res)
}

// POST /api/watch-sessions/:content_id/skip
func (h *WatchSessionHandler) Skip(c *gin.Context) {
	who, ok := requireIdentity(c)
	if !ok {
		return
	}
	if err := h.sessions.RecordSkip(dbctx.Context{Ctx: c.Request.Context()}, who, c.Param("content_id")); err != nil {
		respondServiceError(c, h.log, err, "record_skip_failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/watch-sessions/:content_id/restart
func (h *WatchSessionHandler) Restart(c *gin.Context) {
	who, ok := requireIdentity(c)
	if !ok {
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	contentID := c.Param("content_id")
	if err := h.sessions.RestartSession(dbc, who, contentID); err != nil {
		respondServiceError(c, h.log, err, "restart_watch_session_failed")
		return
	}
	s, err := h.sessions.GetOrCreate(dbc, who, contentID, "")
	if err != nil {
		respondServiceError(c, h.log, err, "get_watch_session_failed")
		return
	}
	response.RespondOK(c, sessionView(s))
}

// PUT /api/watch-sessions/:content_id/reflection
func (h *WatchSessionHandler) PutReflection(c *gin.Context) {
	who, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req reflectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	s, err := h.sessions.SaveReflection(dbctx.Context{Ctx: c.Request.Context()}, who, c.Param("content_id"), strings.TrimSpace(req.ReflectionText))
	if err != nil {
		respondServiceError(c, h.log, err, "save_reflection_failed")
		return
	}
	response.RespondOK(c, sessionView(s))
}

// PUT /api/watch-sessions/:content_id/techniques
func (h *WatchSessionHandler) PutTechniques(c *gin.Context) {
	who, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req techniquesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	s, err := h.sessions.SaveTechniques(dbctx.Context{Ctx: c.Request.Context()}, who, c.Param("content_id"), req.TechniquesApplied)
	if err != nil {
		respondServiceError(c, h.log, err, "save_techniques_failed")
		return
	}
	response.RespondOK(c, sessionView(s))
}

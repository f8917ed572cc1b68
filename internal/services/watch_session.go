package services

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/calmpath-backend/internal/data/repos"
	types "github.com/yungbote/calmpath-backend/internal/domain"
	"github.com/yungbote/calmpath-backend/internal/domain/engagement"
	"github.com/yungbote/calmpath-backend/internal/platform/dbctx"
	"github.com/yungbote/calmpath-backend/internal/platform/identity"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
)

const (
	maxContentIDLen   = 128
	maxReflectionLen  = 20000
	maxTechniqueCount = 64
)

// WatchSessionUpdate carries the fields a caller wants to change. Nil means untouched.
type WatchSessionUpdate struct {
	WatchDuration     *float64  `json:"watch_duration"`
	TotalDuration     *float64  `json:"total_duration"`
	LastPosition      *float64  `json:"last_position"`
	ReflectionText    *string   `json:"reflection_text"`
	TechniquesApplied *[]string `json:"techniques_applied"`
}

func (u WatchSessionUpdate) empty() bool {
	return u.WatchDuration == nil && u.TotalDuration == nil && u.LastPosition == nil &&
		u.ReflectionText == nil && u.TechniquesApplied == nil
}

type WatchSessionService interface {
	GetOrCreate(dbc dbctx.Context, who identity.Identity, contentID, title string) (*types.WatchSession, error)
	Update(dbc dbctx.Context, who identity.Identity, contentID, title string, upd WatchSessionUpdate) (*types.WatchSession, error)
	RecordSkip(dbc dbctx.Context, who identity.Identity, contentID string) error
	RestartSession(dbc dbctx.Context, who identity.Identity, contentID string) error
	BeginView(dbc dbctx.Context, who identity.Identity, contentID string) (bool, error)
	MarkCompleted(dbc dbctx.Context, who identity.Identity, contentID string, at time.Time) (bool, error)
	SaveReflection(dbc dbctx.Context, who identity.Identity, contentID, text string) (*types.WatchSession, error)
	SaveTechniques(dbc dbctx.Context, who identity.Identity, contentID string, tags []string) (*types.WatchSession, error)
	ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.WatchSession, error)
}

type watchSessionService struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.WatchSessionRepo
	notifier EngagementNotifier
	now      func() time.Time
}

func NewWatchSessionService(db *gorm.DB, baseLog *logger.Logger, repo repos.WatchSessionRepo, notifier EngagementNotifier) WatchSessionService {
	return &watchSessionService{
		db:       db,
		log:      baseLog.With("service", "WatchSessionService"),
		repo:     repo,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *watchSessionService) GetOrCreate(dbc dbctx.Context, who identity.Identity, contentID, title string) (*types.WatchSession, error) {
	contentID, err := checkKey(who, contentID)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.Get(dbc, who.UserID, contentID)
	if err != nil {
		return nil, storeError("get watch session", err)
	}
	if row != nil {
		return row, nil
	}
	if err := s.repo.InsertIfAbsent(dbc, s.zeroSession(who.UserID, contentID, title)); err != nil {
		return nil, storeError("create watch session", err)
	}
	row, err = s.repo.Get(dbc, who.UserID, contentID)
	if err != nil {
		return nil, storeError("reload watch session", err)
	}
	if row == nil {
		return nil, storeError("reload watch session", gorm.ErrRecordNotFound)
	}
	s.log.Debug("watch session created", "user_id", who.UserID, "content_id", contentID)
	return row, nil
}

func (s *watchSessionService) Update(dbc dbctx.Context, who identity.Identity, contentID, title string, upd WatchSessionUpdate) (*types.WatchSession, error) {
	contentID, err := checkKey(who, contentID)
	if err != nil {
		return nil, err
	}
	if err := validateUpdate(upd); err != nil {
		return nil, err
	}
	prev, err := s.repo.Get(dbc, who.UserID, contentID)
	if err != nil {
		return nil, storeError("get watch session", err)
	}
	if upd.empty() && prev != nil {
		return prev, nil
	}

	row := s.zeroSession(who.UserID, contentID, title)
	if prev != nil {
		cp := *prev
		cp.ID = uuid.Nil
		row = &cp
	}
	cols := []string{"completion_percentage"}
	if t := strings.TrimSpace(title); t != "" && t != row.ContentTitle {
		row.ContentTitle = t
		cols = append(cols, "content_title")
	}
	if upd.WatchDuration != nil {
		row.WatchDuration = math.Max(row.WatchDuration, *upd.WatchDuration)
		cols = append(cols, "watch_duration")
	}
	if upd.TotalDuration != nil && *upd.TotalDuration > 0 {
		row.TotalDuration = *upd.TotalDuration
		cols = append(cols, "total_duration")
	}
	if upd.LastPosition != nil {
		row.LastPosition = *upd.LastPosition
		cols = append(cols, "last_position")
	}
	if upd.ReflectionText != nil {
		row.ReflectionText = strings.TrimSpace(*upd.ReflectionText)
		cols = append(cols, "reflection_text")
	}
	if upd.TechniquesApplied != nil {
		row.TechniquesApplied = techniquesJSON(NormalizeTechniques(*upd.TechniquesApplied))
		cols = append(cols, "techniques_applied")
	}
	row.CompletionPercentage = engagement.ComputeCompletionPercentage(row.WatchDuration, row.TotalDuration)

	if err := s.repo.Upsert(dbc, row, cols); err != nil {
		return nil, storeError("upsert watch session", err)
	}
	out, err := s.repo.Get(dbc, who.UserID, contentID)
	if err != nil {
		return nil, storeError("reload watch session", err)
	}
	if out != nil && s.notifier != nil {
		s.notifier.SessionProgress(dbc.Ctx, who.UserID, out)
	}
	return out, nil
}

func (s *watchSessionService) RecordSkip(dbc dbctx.Context, who identity.Identity, contentID string) error {
	contentID, err := checkKey(who, contentID)
	if err != nil {
		return err
	}
	ok, err := s.repo.IncrementSkipCount(dbc, who.UserID, contentID, 1)
	if err != nil {
		return storeError("increment skip count", err)
	}
	if !ok {
		// a skip can arrive before the session row exists
		if err := s.repo.InsertIfAbsent(dbc, s.zeroSession(who.UserID, contentID, "")); err != nil {
			return storeError("create watch session", err)
		}
		if _, err := s.repo.IncrementSkipCount(dbc, who.UserID, contentID, 1); err != nil {
			return storeError("increment skip count", err)
		}
	}
	if s.notifier != nil {
		s.notifier.SkipDetected(dbc.Ctx, who.UserID, contentID)
	}
	return nil
}

func (s *watchSessionService) RestartSession(dbc dbctx.Context, who identity.Identity, contentID string) error {
	contentID, err := checkKey(who, contentID)
	if err != nil {
		return err
	}
	ok, err := s.repo.Restart(dbc, who.UserID, contentID, s.now())
	if err != nil {
		return storeError("restart watch session", err)
	}
	if !ok {
		return ErrNotFound
	}
	s.log.Info("watch session restarted", "user_id", who.UserID, "content_id", contentID)
	if s.notifier != nil {
		s.notifier.SessionRestarted(dbc.Ctx, who.UserID, contentID)
	}
	return nil
}

func (s *watchSessionService) BeginView(dbc dbctx.Context, who identity.Identity, contentID string) (bool, error) {
	contentID, err := checkKey(who, contentID)
	if err != nil {
		return false, err
	}
	ok, err := s.repo.BeginView(dbc, who.UserID, contentID, s.now())
	if err != nil {
		return false, storeError("begin view", err)
	}
	return ok, nil
}

func (s *watchSessionService) MarkCompleted(dbc dbctx.Context, who identity.Identity, contentID string, at time.Time) (bool, error) {
	contentID, err := checkKey(who, contentID)
	if err != nil {
		return false, err
	}
	if at.IsZero() {
		at = s.now()
	}
	ok, err := s.repo.MarkCompleted(dbc, who.UserID, contentID, at)
	if err != nil {
		return false, storeError("mark completed", err)
	}
	if ok && s.notifier != nil {
		if row, err := s.repo.Get(dbc, who.UserID, contentID); err == nil && row != nil {
			s.notifier.SessionCompleted(dbc.Ctx, who.UserID, row)
		}
	}
	return ok, nil
}

func (s *watchSessionService) SaveReflection(dbc dbctx.Context, who identity.Identity, contentID, text string) (*types.WatchSession, error) {
	return s.Update(dbc, who, contentID, "", WatchSessionUpdate{ReflectionText: &text})
}

func (s *watchSessionService) SaveTechniques(dbc dbctx.Context, who identity.Identity, contentID string, tags []string) (*types.WatchSession, error) {
	if tags == nil {
		tags = []string{}
	}
	return s.Update(dbc, who, contentID, "", WatchSessionUpdate{TechniquesApplied: &tags})
}

func (s *watchSessionService) ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.WatchSession, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	rows, err := s.repo.ListByUser(dbc, userID)
	if err != nil {
		return nil, storeError("list watch sessions", err)
	}
	return rows, nil
}

func (s *watchSessionService) zeroSession(userID uuid.UUID, contentID, title string) *types.WatchSession {
	now := s.now()
	return &types.WatchSession{
		UserID:            userID,
		ContentID:         contentID,
		ContentTitle:      strings.TrimSpace(title),
		StartedAt:         now,
		TechniquesApplied: techniquesJSON(nil),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// NormalizeTechniques trims tags and drops blanks and repeats, keeping first-seen order.
func NormalizeTechniques(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Techniques decodes a session's techniques column.
func Techniques(s *types.WatchSession) []string {
	out := []string{}
	if s == nil || len(s.TechniquesApplied) == 0 {
		return out
	}
	_ = json.Unmarshal(s.TechniquesApplied, &out)
	return out
}

func techniquesJSON(tags []string) datatypes.JSON {
	if tags == nil {
		tags = []string{}
	}
	raw, _ := json.Marshal(tags)
	return datatypes.JSON(raw)
}

func checkKey(who identity.Identity, contentID string) (string, error) {
	if !who.Valid() {
		return "", ErrUnauthorized
	}
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return "", invalidArgument("content_id is required")
	}
	if len(contentID) > maxContentIDLen {
		return "", invalidArgument("content_id is too long")
	}
	return contentID, nil
}

func validateUpdate(upd WatchSessionUpdate) error {
	for name, v := range map[string]*float64{
		"watch_duration": upd.WatchDuration,
		"total_duration": upd.TotalDuration,
		"last_position":  upd.LastPosition,
	} {
		if v == nil {
			continue
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
			return invalidArgument(name + " must be a non-negative number")
		}
	}
	if upd.ReflectionText != nil && len(*upd.ReflectionText) > maxReflectionLen {
		return invalidArgument("reflection_text is too long")
	}
	if upd.TechniquesApplied != nil && len(*upd.TechniquesApplied) > maxTechniqueCount {
		return invalidArgument("too many techniques")
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	types "github.com/yungbote/calmpath-backend/internal/domain"
	"github.com/yungbote/calmpath-backend/internal/modules/engagement"
	"github.com/yungbote/calmpath-backend/internal/platform/dbctx"
	"github.com/yungbote/calmpath-backend/internal/platform/envutil"
	"github.com/yungbote/calmpath-backend/internal/platform/identity"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
)

const DefaultPersistInterval = 10 * time.Second

type PlaybackConfig struct {
	Detector        engagement.SkipDetector
	PersistInterval time.Duration
}

func PlaybackConfigFromEnv(log *logger.Logger) PlaybackConfig {
	cfg := PlaybackConfig{
		Detector:        engagement.SkipDetectorFromEnv(log),
		PersistInterval: envutil.Seconds("PLAYBACK_PERSIST_INTERVAL_SECONDS", DefaultPersistInterval, log),
	}
	if cfg.PersistInterval <= 0 {
		cfg.PersistInterval = DefaultPersistInterval
	}
	return cfg
}

// PlaybackResult is what a batch of player events produced.
type PlaybackResult struct {
	Session       *types.WatchSession `json:"session"`
	State         types.SessionState  `json:"state"`
	SkipsDetected int                 `json:"skips_detected"`
	LastPosition  float64             `json:"last_position"`
	Persisted     bool                `json:"persisted"`
}

type PlaybackService interface {
	NewTracker(dbc dbctx.Context, who identity.Identity, contentID, title string) (*Tracker, error)
	ApplyBatch(dbc dbctx.Context, who identity.Identity, contentID, title string, events []engagement.Event) (*PlaybackResult, error)
	// Wait blocks until every in-flight skip write started by any tracker has finished.
	Wait()
}

type playbackService struct {
	log      *logger.Logger
	sessions WatchSessionService
	cfg      PlaybackConfig
	inflight sync.WaitGroup
}

func NewPlaybackService(baseLog *logger.Logger, sessions WatchSessionService, cfg PlaybackConfig) PlaybackService {
	if cfg.PersistInterval <= 0 {
		cfg.PersistInterval = DefaultPersistInterval
	}
	return &playbackService{
		log:      baseLog.With("service", "PlaybackService"),
		sessions: sessions,
		cfg:      cfg,
	}
}

// NewTracker seeds a tracker from the stored session. When the store cannot be reached
// the tracker still runs: skips are detected and counted, and persistence is skipped.
func (s *playbackService) NewTracker(dbc dbctx.Context, who identity.Identity, contentID, title string) (*Tracker, error) {
	if !who.Valid() {
		return nil, ErrUnauthorized
	}
	session, err := s.sessions.GetOrCreate(dbc, who, contentID, title)
	if err != nil {
		if !isStoreError(err) {
			return nil, err
		}
		s.log.Warn("watch session unavailable; tracking without persistence", "user_id", who.UserID, "content_id", contentID, "error", err)
		session = nil
	}
	t := &Tracker{
		log:       s.log.With("content_id", contentID),
		sessions:  s.sessions,
		detector:  s.cfg.Detector,
		interval:  s.cfg.PersistInterval.Seconds(),
		who:       who,
		contentID: contentID,
		title:     title,
		session:   session,
		state:     session.State(),
		inflight:  &s.inflight,
	}
	if session != nil {
		t.total = session.TotalDuration
		t.lastPos = session.LastPosition
		t.maxObserved = session.WatchDuration
		t.persistedPos = session.LastPosition
	}
	return t, nil
}

func (s *playbackService) ApplyBatch(dbc dbctx.Context, who identity.Identity, contentID, title string, events []engagement.Event) (*PlaybackResult, error) {
	for i, ev := range events {
		if err := ev.Validate(); err != nil {
			return nil, invalidArgument(fmt.Sprintf("event %d: %v", i, err))
		}
	}
	t, err := s.NewTracker(dbc, who, contentID, title)
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		if err := t.Apply(dbc.Ctx, ev); err != nil {
			return nil, err
		}
	}
	t.Flush(dbc.Ctx)
	snap := t.Snapshot()
	return &PlaybackResult{
		Session:       snap.Session,
		State:         snap.State,
		SkipsDetected: snap.Skips,
		LastPosition:  snap.LastPosition,
		Persisted:     snap.Session != nil && !snap.Dirty,
	}, nil
}

func (s *playbackService) Wait() { s.inflight.Wait() }

// Tracker follows one user's playback of one piece of content. Apply is meant for a
// single consumer; Snapshot may be called from anywhere.
type Tracker struct {
	log       *logger.Logger
	sessions  WatchSessionService
	detector  engagement.SkipDetector
	interval  float64
	who       identity.Identity
	contentID string
	title     string

	mu           sync.Mutex
	session      *types.WatchSession
	state        types.SessionState
	total        float64
	lastPos      float64
	maxObserved  float64
	persistedPos float64
	dirty        bool
	skips        int

	wg       sync.WaitGroup
	inflight *sync.WaitGroup
}

type TrackerSnapshot struct {
	Session      *types.WatchSession
	State        types.SessionState
	Skips        int
	LastPosition float64
	MaxObserved  float64
	Dirty        bool
}

func (t *Tracker) Snapshot() TrackerSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TrackerSnapshot{
		Session:      t.session,
		State:        t.state,
		Skips:        t.skips,
		LastPosition: t.lastPos,
		MaxObserved:  t.maxObserved,
		Dirty:        t.dirty,
	}
}

// Run consumes events until the channel closes or ctx ends, then flushes.
func (t *Tracker) Run(ctx context.Context, events <-chan engagement.Event) error {
	for {
		select {
		case <-ctx.Done():
			t.Flush(context.WithoutCancel(ctx))
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				t.Flush(ctx)
				return nil
			}
			if err := t.Apply(ctx, ev); err != nil {
				t.log.Warn("dropping invalid playback event", "kind", ev.Kind, "error", err)
			}
		}
	}
}

func (t *Tracker) Apply(ctx context.Context, ev engagement.Event) error {
	ev = ev.Normalized()
	if err := ev.Validate(); err != nil {
		return invalidArgument(err.Error())
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Kind {
	case engagement.EventReady:
		if ev.Duration > 0 && ev.Duration != t.total {
			t.total = ev.Duration
			t.dirty = true
		}
	case engagement.EventPlay:
		if t.state == types.StateNotStarted {
			t.beginViewLocked(ctx)
		}
	case engagement.EventPosition:
		if ev.Duration > 0 && ev.Duration != t.total {
			t.total = ev.Duration
			t.dirty = true
		}
		if t.detector.IsSkip(engagement.ChannelPeriodic, t.lastPos, ev.Position) {
			t.recordSkipLocked(ctx, t.lastPos, ev.Position)
		}
		t.moveLocked(ev.Position)
		if t.state == types.StateNotStarted && ev.Position > 0 {
			t.beginViewLocked(ctx)
		}
		if math.Abs(t.lastPos-t.persistedPos) >= t.interval {
			t.persistLocked(ctx)
		}
	case engagement.EventSeeked:
		if t.detector.IsSkip(engagement.ChannelSeek, ev.From, ev.To) {
			t.recordSkipLocked(ctx, ev.From, ev.To)
		}
		// the next periodic update measures from here, so one jump is counted once
		if ev.To != t.lastPos {
			t.lastPos = ev.To
			t.dirty = true
		}
	case engagement.EventPause:
		t.persistLocked(ctx)
	case engagement.EventEnded:
		if t.total > 0 {
			t.moveLocked(t.total)
		}
		t.persistLocked(ctx)
		if t.state != types.StateCompleted && t.session != nil {
			dbc := dbctx.Context{Ctx: ctx}
			if _, err := t.sessions.MarkCompleted(dbc, t.who, t.contentID, time.Now().UTC()); err != nil {
				t.log.Warn("mark completed failed", "user_id", t.who.UserID, "error", err)
			} else if out, err := t.sessions.GetOrCreate(dbc, t.who, t.contentID, t.title); err == nil {
				t.session = out
			}
		}
		t.state = types.StateCompleted
	}
	return nil
}

// beginViewLocked moves a not-started tracker into progress and counts the view.
func (t *Tracker) beginViewLocked(ctx context.Context) {
	if t.session != nil {
		if _, err := t.sessions.BeginView(dbctx.Context{Ctx: ctx}, t.who, t.contentID); err != nil {
			t.log.Warn("begin view failed", "user_id", t.who.UserID, "error", err)
		}
	}
	t.state = types.StateInProgress
}

// Flush persists progress not yet written.
func (t *Tracker) Flush(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dirty {
		t.persistLocked(ctx)
	}
}

// Wait blocks until this tracker's skip writes have finished.
func (t *Tracker) Wait() { t.wg.Wait() }

func (t *Tracker) moveLocked(pos float64) {
	if pos != t.lastPos {
		t.lastPos = pos
		t.dirty = true
	}
	if pos > t.maxObserved {
		t.maxObserved = pos
		t.dirty = true
	}
}

// recordSkipLocked counts the skip right away and writes it in the background on a
// context that outlives the request.
func (t *Tracker) recordSkipLocked(ctx context.Context, from, to float64) {
	t.skips++
	t.log.Debug("skip detected", "user_id", t.who.UserID, "from", from, "to", to)

	bg := context.WithoutCancel(ctx)
	t.wg.Add(1)
	if t.inflight != nil {
		t.inflight.Add(1)
	}
	go func() {
		defer func() {
			t.wg.Done()
			if t.inflight != nil {
				t.inflight.Done()
			}
		}()
		if err := t.sessions.RecordSkip(dbctx.Context{Ctx: bg}, t.who, t.contentID); err != nil {
			t.log.Warn("skip write failed", "user_id", t.who.UserID, "error", err)
		}
	}()
}

func (t *Tracker) persistLocked(ctx context.Context) {
	if t.session == nil {
		t.log.Debug("no stored session; progress not persisted", "user_id", t.who.UserID)
		return
	}
	watched := math.Max(t.maxObserved, t.session.WatchDuration)
	pos := t.lastPos
	upd := WatchSessionUpdate{
		WatchDuration: &watched,
		LastPosition:  &pos,
	}
	if t.total > 0 {
		total := t.total
		upd.TotalDuration = &total
	}
	out, err := t.sessions.Update(dbctx.Context{Ctx: ctx}, t.who, t.contentID, t.title, upd)
	if err != nil {
		t.log.Warn("progress write failed", "user_id", t.who.UserID, "error", err)
		return
	}
	if out != nil {
		t.session = out
	}
	t.persistedPos = pos
	t.dirty = false
}

func isStoreError(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

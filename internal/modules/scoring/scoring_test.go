package scoring

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/calmpath-backend/internal/platform/logger"
)

type staticSource struct {
	category Category
	records  []Record
	err      error
	calls    atomic.Int32
}

func (s *staticSource) Category() Category { return s.category }

func (s *staticSource) ListForUser(ctx context.Context, userID uuid.UUID) ([]Record, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func ptr(s string) *string { return &s }

func TestAggregator_ShortNoteIsClampedToMinimum(t *testing.T) {
	agg := NewAggregator(DefaultRules(), logger.Nop(),
		&staticSource{category: CategoryTimelineNotes, records: []Record{NoteRecord{Content: "Hola"}}},
	)
	got, err := agg.Score(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got.RawTotal != 4 {
		t.Fatalf("raw total: want=4 got=%d", got.RawTotal)
	}
	if got.Total != 10 {
		t.Fatalf("reported total: want=10 got=%d", got.Total)
	}
	if got.Level != LevelPrincipiante {
		t.Fatalf("level: want=%s got=%s", LevelPrincipiante, got.Level)
	}
}

func TestAggregator_CompletedSession(t *testing.T) {
	session := VideoRecord{
		WatchDuration:  600,
		Completed:      true,
		ReflectionText: strings.Repeat("a", 50),
		ViewCount:      1,
	}
	agg := NewAggregator(DefaultRules(), logger.Nop(),
		&staticSource{category: CategoryVideoSessions, records: []Record{session}},
	)
	got, err := agg.Score(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got.Total != 750 {
		t.Fatalf("total: want=750 got=%d", got.Total)
	}
	if got.Level != LevelIntermedio {
		t.Fatalf("level: want=%s got=%s", LevelIntermedio, got.Level)
	}
}

func TestAggregator_NoActivityIsZero(t *testing.T) {
	var sources []Source
	for _, c := range Categories {
		sources = append(sources, &staticSource{category: c})
	}
	got, err := NewAggregator(DefaultRules(), logger.Nop(), sources...).Score(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got.Total != 0 || got.RawTotal != 0 {
		t.Fatalf("expected zero score, got %+v", got)
	}
	if len(got.Categories) != len(Categories) {
		t.Fatalf("expected every category reported, got %d", len(got.Categories))
	}
}

func TestAggregator_FailingCategoryCountsAsZero(t *testing.T) {
	broken := &staticSource{category: CategoryLetters, err: errors.New("store down")}
	notes := &staticSource{category: CategoryTimelineNotes, records: []Record{NoteRecord{Content: strings.Repeat("x", 250)}}}
	got, err := NewAggregator(DefaultRules(), logger.Nop(), broken, notes).Score(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got.Total != 250 {
		t.Fatalf("total: want=250 got=%d", got.Total)
	}
	if got.Level != LevelIntermedio {
		t.Fatalf("level: want=%s got=%s", LevelIntermedio, got.Level)
	}
	var sawFailure bool
	for _, c := range got.Categories {
		if c.Category == CategoryLetters {
			sawFailure = c.Failed && c.Points == 0
		}
	}
	if !sawFailure {
		t.Fatalf("expected letters to be flagged as failed: %+v", got.Categories)
	}
	if broken.calls.Load() != 1 || notes.calls.Load() != 1 {
		t.Fatalf("each source should be read once")
	}
}

func TestAggregator_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAggregator(DefaultRules(), logger.Nop()).Score(ctx, uuid.New())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRules_Points(t *testing.T) {
	r := DefaultRules()
	cases := []struct {
		name     string
		category Category
		records  []Record
		want     int
	}{
		{"letters count code points", CategoryLetters, []Record{LetterRecord{Content: "¿Qué tal?"}}, 9},
		{"self description", CategorySelfDescription, []Record{answer("soy curiosa"), answer("")}, 11},
		{"wrong category ignored", CategoryTimelineNotes, []Record{LetterRecord{Content: "abc"}}, 0},
		{"rewatch bonus", CategoryVideoSessions, []Record{VideoRecord{WatchDuration: 119, ViewCount: 3}}, 50 + 200},
		{"skip penalty floors at zero", CategoryVideoSessions, []Record{VideoRecord{WatchDuration: 60, SkipCount: 20}}, 0},
		{"skip allowance", CategoryVideoSessions, []Record{VideoRecord{WatchDuration: 120, SkipCount: 7}}, 100 - 20},
		{"sessions summed independently", CategoryVideoSessions, []Record{
			VideoRecord{WatchDuration: 60, SkipCount: 30},
			VideoRecord{WatchDuration: 60},
		}, 50},
		{"emotion match mastery", CategoryEmotionMatch, []Record{
			EmotionMatchRecord{TargetEmotion: "alegria", Correct: true},
			EmotionMatchRecord{TargetEmotion: "Alegria", Correct: true},
			EmotionMatchRecord{TargetEmotion: "alegria", Correct: true},
			EmotionMatchRecord{TargetEmotion: "miedo", Correct: false},
			EmotionMatchRecord{TargetEmotion: "miedo", Correct: true},
		}, 5*10 + 4*30 + 100},
		{"emotion log notes", CategoryEmotionLog, []Record{
			EmotionLogRecord{Note: ptr("bien")},
			EmotionLogRecord{Note: ptr("   ")},
			EmotionLogRecord{Note: ptr("")},
			EmotionLogRecord{},
		}, 4*50 + 4 + 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Points(tc.category, tc.records); got != tc.want {
				t.Fatalf("Points: want=%d got=%d", tc.want, got)
			}
		})
	}
}

func answer(s string) Record { return SelfDescriptionRecord{Answer: s} }

func TestRules_LevelFor(t *testing.T) {
	r := DefaultRules()
	cases := map[int]Level{
		0:    LevelPrincipiante,
		199:  LevelPrincipiante,
		200:  LevelIntermedio,
		499:  LevelIntermedio,
		500:  LevelAvanzado,
		999:  LevelAvanzado,
		1000: LevelExperto,
		1999: LevelExperto,
		2000: LevelMaestro,
		9999: LevelMaestro,
	}
	for total, want := range cases {
		if got := r.LevelFor(total); got != want {
			t.Fatalf("LevelFor(%d): want=%s got=%s", total, want, got)
		}
	}
}

func TestLoadRules_EmbeddedMatchesDefaults(t *testing.T) {
	t.Setenv(scoringRulesEnv, "")
	got := LoadRules(logger.Nop())
	want := DefaultRules()
	if got.Video != want.Video || got.EmotionMatch != want.EmotionMatch || got.EmotionLog != want.EmotionLog || got.FreeText != want.FreeText {
		t.Fatalf("embedded rules drifted from defaults: %+v", got)
	}
	for total, lvl := range map[int]Level{150: LevelPrincipiante, 1500: LevelExperto, 5000: LevelMaestro} {
		if got.LevelFor(total) != lvl {
			t.Fatalf("embedded levels: LevelFor(%d)=%s", total, got.LevelFor(total))
		}
	}
}

func TestLoadRules_OverrideAndFallback(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "scoring.yaml")
	body := `version: 1
free_text:
  points_per_char: 2
emotion_match:
  mastery_correct_threshold: 5
minimum_visible_score: 25
levels:
  - name: Principiante
    below: 100
  - name: Maestro
`
	if err := os.WriteFile(custom, []byte(body), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	t.Setenv(scoringRulesEnv, custom)
	got := LoadRules(logger.Nop())
	if got.FreeText.PointsPerChar != 2 || got.Finalize(3) != 25 || got.LevelFor(100) != LevelMaestro {
		t.Fatalf("override not applied: %+v", got)
	}

	t.Setenv(scoringRulesEnv, filepath.Join(dir, "missing.yaml"))
	if got := LoadRules(logger.Nop()); got.Video != DefaultRules().Video {
		t.Fatalf("missing file should fall back to defaults")
	}

	if _, err := ParseRules([]byte("version: 1\nemotion_match:\n  mastery_correct_threshold: 3\nlevels:\n  - name: A\n")); err != nil {
		t.Fatalf("single unbounded level should be valid: %v", err)
	}
	if _, err := ParseRules([]byte("version: 1\nemotion_match:\n  mastery_correct_threshold: 3\nlevels:\n  - name: A\n  - name: B\n    below: 10\n")); err == nil {
		t.Fatalf("expected bounded last level to be rejected")
	}
}

package engagement

import (
	"testing"
	"time"
)

func TestSkipDetector_IsSkip(t *testing.T) {
	d := DefaultSkipDetector()
	cases := []struct {
		name string
		ch   Channel
		from float64
		to   float64
		want bool
	}{
		{"periodic forward jump", ChannelPeriodic, 10, 15, true},
		{"jump from start never counts", ChannelPeriodic, 0, 8, false},
		{"seek from start never counts", ChannelSeek, 0, 120, false},
		{"periodic at threshold", ChannelPeriodic, 10, 12, false},
		{"periodic just past threshold", ChannelPeriodic, 10, 12.01, true},
		{"seek past its own threshold", ChannelSeek, 10, 11.5, true},
		{"seek at threshold", ChannelSeek, 10, 11, false},
		{"backwards seek", ChannelSeek, 30, 5, false},
		{"normal playback tick", ChannelPeriodic, 41, 41.25, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := d.IsSkip(tc.ch, tc.from, tc.to); got != tc.want {
				t.Fatalf("IsSkip(%s, %v, %v): want=%v got=%v", tc.ch, tc.from, tc.to, tc.want, got)
			}
		})
	}
}

func TestSkipDetector_FromEnv(t *testing.T) {
	t.Setenv("PLAYBACK_PERIODIC_SKIP_THRESHOLD_SECONDS", "3.5")
	t.Setenv("PLAYBACK_SEEK_SKIP_THRESHOLD_SECONDS", "-1")
	d := SkipDetectorFromEnv(nil)
	if d.Periodic != 3500*time.Millisecond {
		t.Fatalf("periodic threshold: got %v", d.Periodic)
	}
	if d.Seek != DefaultSeekThreshold {
		t.Fatalf("invalid seek threshold should fall back, got %v", d.Seek)
	}
	if d.IsSkip(ChannelPeriodic, 10, 13) {
		t.Fatalf("3s jump should be under a 3.5s threshold")
	}
}

func TestEvent_Validate(t *testing.T) {
	if err := Seeked(3, 9).Validate(); err != nil {
		t.Fatalf("valid seek rejected: %v", err)
	}
	if err := (Event{Kind: "rewind"}).Validate(); err == nil {
		t.Fatalf("expected unknown kind to fail")
	}
	if err := Position(-1, 10).Validate(); err == nil {
		t.Fatalf("expected negative position to fail")
	}
}

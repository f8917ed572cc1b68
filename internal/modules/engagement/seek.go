package engagement

import (
	"time"

	"github.com/yungbote/calmpath-backend/internal/platform/envutil"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
)

// Channel names where a position jump was observed. Periodic updates arrive a few times
// a second and need more slack than an explicit seek from the player controls.
type Channel string

const (
	ChannelPeriodic Channel = "periodic"
	ChannelSeek     Channel = "seek"
)

const (
	DefaultPeriodicThreshold = 2 * time.Second
	DefaultSeekThreshold     = 1 * time.Second
)

type SkipDetector struct {
	Periodic time.Duration
	Seek     time.Duration
}

func DefaultSkipDetector() SkipDetector {
	return SkipDetector{Periodic: DefaultPeriodicThreshold, Seek: DefaultSeekThreshold}
}

// SkipDetectorFromEnv reads PLAYBACK_PERIODIC_SKIP_THRESHOLD_SECONDS and
// PLAYBACK_SEEK_SKIP_THRESHOLD_SECONDS, keeping the defaults for unset or invalid values.
func SkipDetectorFromEnv(log *logger.Logger) SkipDetector {
	d := SkipDetector{
		Periodic: envutil.Seconds("PLAYBACK_PERIODIC_SKIP_THRESHOLD_SECONDS", DefaultPeriodicThreshold, log),
		Seek:     envutil.Seconds("PLAYBACK_SEEK_SKIP_THRESHOLD_SECONDS", DefaultSeekThreshold, log),
	}
	if d.Periodic <= 0 {
		d.Periodic = DefaultPeriodicThreshold
	}
	if d.Seek <= 0 {
		d.Seek = DefaultSeekThreshold
	}
	return d
}

func (d SkipDetector) Threshold(ch Channel) time.Duration {
	switch ch {
	case ChannelSeek:
		if d.Seek > 0 {
			return d.Seek
		}
		return DefaultSeekThreshold
	default:
		if d.Periodic > 0 {
			return d.Periodic
		}
		return DefaultPeriodicThreshold
	}
}

// IsSkip reports a forward jump larger than the channel threshold. Jumps that start at
// the very beginning of the content never count, whatever their size.
func (d SkipDetector) IsSkip(ch Channel, from, to float64) bool {
	if from <= 0 {
		return false
	}
	return to > from+d.Threshold(ch).Seconds()
}

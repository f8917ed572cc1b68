package engagement

import (
	"fmt"
	"strings"
	"time"
)

type EventKind string

const (
	EventReady    EventKind = "ready"
	EventPlay     EventKind = "play"
	EventPause    EventKind = "pause"
	EventEnded    EventKind = "ended"
	EventPosition EventKind = "position"
	EventSeeked   EventKind = "seeked"
)

// Event is one signal from whatever player renders the content. Only the fields that
// belong to the kind are meaningful: Duration for ready and position, Position for
// position, From and To for seeked.
type Event struct {
	Kind     EventKind `json:"kind"`
	Position float64   `json:"position,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	From     float64   `json:"from,omitempty"`
	To       float64   `json:"to,omitempty"`
	At       time.Time `json:"at,omitempty"`
}

func Ready(duration float64) Event { return Event{Kind: EventReady, Duration: duration} }
func Play() Event                  { return Event{Kind: EventPlay} }
func Pause() Event                 { return Event{Kind: EventPause} }
func Ended() Event                 { return Event{Kind: EventEnded} }

func Position(t, duration float64) Event {
	return Event{Kind: EventPosition, Position: t, Duration: duration}
}

func Seeked(from, to float64) Event { return Event{Kind: EventSeeked, From: from, To: to} }

// Normalized returns e with its kind trimmed and lower-cased, the form Validate accepts.
func (e Event) Normalized() Event {
	e.Kind = EventKind(strings.ToLower(strings.TrimSpace(string(e.Kind))))
	return e
}

func (e Event) Validate() error {
	switch e.Normalized().Kind {
	case EventPlay, EventPause, EventEnded:
		return nil
	case EventReady:
		if e.Duration < 0 {
			return fmt.Errorf("ready: negative duration %v", e.Duration)
		}
		return nil
	case EventPosition:
		if e.Position < 0 || e.Duration < 0 {
			return fmt.Errorf("position: negative values (%v, %v)", e.Position, e.Duration)
		}
		return nil
	case EventSeeked:
		if e.From < 0 || e.To < 0 {
			return fmt.Errorf("seeked: negative values (%v, %v)", e.From, e.To)
		}
		return nil
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
}

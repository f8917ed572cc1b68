package leaderboard

import (
	"bytes"
	"errors"
	"sort"
	"strconv"

	"github.com/google/uuid"

	types "github.com/yungbote/calmpath-backend/internal/domain"
	"github.com/yungbote/calmpath-backend/internal/modules/scoring"
)

// RedactionMarker replaces every score the viewer is not allowed to see.
const RedactionMarker = "***"

var redactedJSON = []byte(strconv.Quote(RedactionMarker))

// Score is either a visible number or the redaction marker. The zero value is redacted.
type Score struct {
	value   int
	visible bool
}

func Visible(v int) Score { return Score{value: v, visible: true} }

func Redacted() Score { return Score{} }

func (s Score) Value() (int, bool) { return s.value, s.visible }

func (s Score) String() string {
	if !s.visible {
		return RedactionMarker
	}
	return strconv.Itoa(s.value)
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.visible {
		return redactedJSON, nil
	}
	return []byte(strconv.Itoa(s.value)), nil
}

func (s *Score) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, redactedJSON) {
		*s = Redacted()
		return nil
	}
	v, err := strconv.Atoi(string(b))
	if err != nil {
		return errors.New("leaderboard: score must be a number or the redaction marker")
	}
	*s = Visible(v)
	return nil
}

// Scored is a roster member with their true score, before ranking and redaction.
type Scored struct {
	Profile *types.Profile
	Total   int
	Level   scoring.Level
}

type Entry struct {
	Rank      int           `json:"rank"`
	UserID    uuid.UUID     `json:"user_id"`
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	Grade     string        `json:"grade"`
	School    string        `json:"school"`
	AvatarURL string        `json:"avatar_url,omitempty"`
	Score     Score         `json:"score"`
	Level     scoring.Level `json:"level"`
	IsSelf    bool          `json:"is_self"`
}

// Eligible keeps the profiles complete enough to appear on the board, preserving order.
func Eligible(roster []*types.Profile) []*types.Profile {
	out := make([]*types.Profile, 0, len(roster))
	for _, p := range roster {
		if p.IsComplete() {
			out = append(out, p)
		}
	}
	return out
}

// Rank orders rows by true score, highest first. Ties keep the input order, which is
// the roster's creation order. Only the viewer's own row keeps its number.
func Rank(rows []Scored, viewer uuid.UUID) []Entry {
	sorted := make([]Scored, 0, len(rows))
	for _, r := range rows {
		if r.Profile != nil {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Total > sorted[j].Total
	})

	out := make([]Entry, len(sorted))
	for i, r := range sorted {
		self := viewer != uuid.Nil && r.Profile.UserID == viewer
		score := Redacted()
		if self {
			score = Visible(r.Total)
		}
		out[i] = Entry{
			Rank:      i + 1,
			UserID:    r.Profile.UserID,
			FirstName: r.Profile.FirstName,
			LastName:  r.Profile.LastName,
			Grade:     r.Profile.Grade,
			School:    r.Profile.School,
			AvatarURL: r.Profile.AvatarURL,
			Score:     score,
			Level:     r.Level,
			IsSelf:    self,
		}
	}
	return out
}

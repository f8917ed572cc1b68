package scoring

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/calmpath-backend/internal/platform/logger"
)

const scoringRulesEnv = "SCORING_RULES_YAML"

//go:embed scoring.yaml
var scoringRulesFS embed.FS

type Rules struct {
	Version             int               `yaml:"version"`
	FreeText            FreeTextRules     `yaml:"free_text"`
	Video               VideoRules        `yaml:"video"`
	EmotionMatch        EmotionMatchRules `yaml:"emotion_match"`
	EmotionLog          EmotionLogRules   `yaml:"emotion_log"`
	MinimumVisibleScore int               `yaml:"minimum_visible_score"`
	Levels              []LevelRule       `yaml:"levels"`
}

type FreeTextRules struct {
	PointsPerChar int `yaml:"points_per_char"`
}

type VideoRules struct {
	PointsPerMinute         int `yaml:"points_per_minute"`
	CompletionBonus         int `yaml:"completion_bonus"`
	ReflectionPointsPerChar int `yaml:"reflection_points_per_char"`
	RewatchBonus            int `yaml:"rewatch_bonus"`
	SkipAllowance           int `yaml:"skip_allowance"`
	SkipPenalty             int `yaml:"skip_penalty"`
}

type EmotionMatchRules struct {
	AttemptPoints           int `yaml:"attempt_points"`
	CorrectPoints           int `yaml:"correct_points"`
	MasteryPoints           int `yaml:"mastery_points"`
	MasteryCorrectThreshold int `yaml:"mastery_correct_threshold"`
}

type EmotionLogRules struct {
	EntryPoints       int `yaml:"entry_points"`
	NotePointsPerChar int `yaml:"note_points_per_char"`
}

// LevelRule applies to totals strictly below Below. The last rule has no bound.
type LevelRule struct {
	Name  string `yaml:"name"`
	Below *int   `yaml:"below"`
}

func intp(v int) *int { return &v }

// DefaultRules is used when no rules file can be loaded.
func DefaultRules() Rules {
	return Rules{
		Version:  1,
		FreeText: FreeTextRules{PointsPerChar: 1},
		Video: VideoRules{
			PointsPerMinute:         50,
			CompletionBonus:         200,
			ReflectionPointsPerChar: 1,
			RewatchBonus:            100,
			SkipAllowance:           5,
			SkipPenalty:             10,
		},
		EmotionMatch: EmotionMatchRules{
			AttemptPoints:           10,
			CorrectPoints:           30,
			MasteryPoints:           100,
			MasteryCorrectThreshold: 3,
		},
		EmotionLog:          EmotionLogRules{EntryPoints: 50, NotePointsPerChar: 1},
		MinimumVisibleScore: 10,
		Levels: []LevelRule{
			{Name: string(LevelPrincipiante), Below: intp(200)},
			{Name: string(LevelIntermedio), Below: intp(500)},
			{Name: string(LevelAvanzado), Below: intp(1000)},
			{Name: string(LevelExperto), Below: intp(2000)},
			{Name: string(LevelMaestro)},
		},
	}
}

// LoadRules reads the file named by SCORING_RULES_YAML, or the embedded rules, and
// falls back to DefaultRules with a warning when either is unusable.
func LoadRules(log *logger.Logger) Rules {
	data, err := readRules()
	if err == nil {
		var rules Rules
		rules, err = ParseRules(data)
		if err == nil {
			return rules
		}
	}
	if log != nil {
		log.Warn("scoring: rules load failed; using defaults", "error", err)
	}
	return DefaultRules()
}

func ParseRules(data []byte) (Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, err
	}
	if err := validateRules(&rules); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

func readRules() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(scoringRulesEnv)); path != "" {
		return os.ReadFile(path)
	}
	return scoringRulesFS.ReadFile("scoring.yaml")
}

func validateRules(r *Rules) error {
	if r == nil {
		return errors.New("missing rules")
	}
	if r.Version != 1 {
		return fmt.Errorf("unsupported rules version: %d", r.Version)
	}
	if r.EmotionMatch.MasteryCorrectThreshold <= 0 {
		return errors.New("emotion_match.mastery_correct_threshold must be positive")
	}
	if r.Video.SkipAllowance < 0 {
		return errors.New("video.skip_allowance must not be negative")
	}
	if r.MinimumVisibleScore < 0 {
		return errors.New("minimum_visible_score must not be negative")
	}
	if len(r.Levels) == 0 {
		return errors.New("no levels defined")
	}
	prev := -1
	for i, lvl := range r.Levels {
		if strings.TrimSpace(lvl.Name) == "" {
			return fmt.Errorf("level %d has no name", i)
		}
		last := i == len(r.Levels)-1
		if lvl.Below == nil {
			if !last {
				return fmt.Errorf("level %q: only the last level may be unbounded", lvl.Name)
			}
			continue
		}
		if last {
			return fmt.Errorf("level %q: the last level must be unbounded", lvl.Name)
		}
		if *lvl.Below <= prev {
			return fmt.Errorf("level %q: bounds must increase", lvl.Name)
		}
		prev = *lvl.Below
	}
	return nil
}

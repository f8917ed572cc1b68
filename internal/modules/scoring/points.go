package scoring

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Points computes one category's contribution from its records. Records of another
// category are ignored.
func (r Rules) Points(c Category, records []Record) int {
	switch c {
	case CategoryTimelineNotes, CategoryLetters, CategorySelfDescription:
		return r.freeTextPoints(c, records)
	case CategoryVideoSessions:
		total := 0
		for _, rec := range records {
			if v, ok := rec.(VideoRecord); ok {
				total += r.SessionPoints(v)
			}
		}
		return total
	case CategoryEmotionMatch:
		return r.emotionMatchPoints(records)
	case CategoryEmotionLog:
		return r.emotionLogPoints(records)
	default:
		return 0
	}
}

func (r Rules) freeTextPoints(c Category, records []Record) int {
	chars := 0
	for _, rec := range records {
		if rec == nil || rec.Category() != c {
			continue
		}
		switch v := rec.(type) {
		case NoteRecord:
			chars += utf8.RuneCountInString(v.Content)
		case LetterRecord:
			chars += utf8.RuneCountInString(v.Content)
		case SelfDescriptionRecord:
			chars += utf8.RuneCountInString(v.Answer)
		}
	}
	return chars * r.FreeText.PointsPerChar
}

// SessionPoints scores a single watch session; a heavily skipped session bottoms out
// at zero rather than pulling the category negative.
func (r Rules) SessionPoints(v VideoRecord) int {
	pts := 0
	if v.WatchDuration > 0 {
		pts += int(math.Floor(v.WatchDuration/60)) * r.Video.PointsPerMinute
	}
	if v.Completed {
		pts += r.Video.CompletionBonus
	}
	pts += utf8.RuneCountInString(v.ReflectionText) * r.Video.ReflectionPointsPerChar
	if v.ViewCount > 1 {
		pts += (v.ViewCount - 1) * r.Video.RewatchBonus
	}
	if over := v.SkipCount - r.Video.SkipAllowance; over > 0 {
		pts -= over * r.Video.SkipPenalty
	}
	if pts < 0 {
		return 0
	}
	return pts
}

func (r Rules) emotionMatchPoints(records []Record) int {
	attempts, correct := 0, 0
	correctByEmotion := map[string]int{}
	for _, rec := range records {
		v, ok := rec.(EmotionMatchRecord)
		if !ok {
			continue
		}
		attempts++
		if !v.Correct {
			continue
		}
		correct++
		if key := strings.ToLower(strings.TrimSpace(v.TargetEmotion)); key != "" {
			correctByEmotion[key]++
		}
	}
	mastered := 0
	for _, n := range correctByEmotion {
		if n >= r.EmotionMatch.MasteryCorrectThreshold {
			mastered++
		}
	}
	return attempts*r.EmotionMatch.AttemptPoints +
		correct*r.EmotionMatch.CorrectPoints +
		mastered*r.EmotionMatch.MasteryPoints
}

func (r Rules) emotionLogPoints(records []Record) int {
	entries, chars := 0, 0
	for _, rec := range records {
		v, ok := rec.(EmotionLogRecord)
		if !ok {
			continue
		}
		entries++
		// a present note counts at its raw length, whitespace included
		if v.Note != nil {
			chars += utf8.RuneCountInString(*v.Note)
		}
	}
	return entries*r.EmotionLog.EntryPoints + chars*r.EmotionLog.NotePointsPerChar
}

// Finalize applies the post-aggregation floor: any participation at all is reported as
// at least MinimumVisibleScore.
func (r Rules) Finalize(raw int) int {
	if raw > 0 && raw < r.MinimumVisibleScore {
		return r.MinimumVisibleScore
	}
	if raw < 0 {
		return 0
	}
	return raw
}

package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/calmpath-backend/internal/modules/scoring"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
	"github.com/yungbote/calmpath-backend/internal/services"
)

type Services struct {
	Notifier services.EngagementNotifier

	WatchSession services.WatchSessionService
	Playback     services.PlaybackService

	Rules       scoring.Rules
	Score       services.ScoreService
	Leaderboard services.LeaderboardService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")

	// Every instance forwards the bus into its own hub, so publishing is enough.
	notifier := services.NewEngagementNotifier(&services.BusEmitter{Bus: clients.Bus, Log: log})

	watchSessions := services.NewWatchSessionService(db, log, repos.WatchSession, notifier)
	playback := services.NewPlaybackService(log, watchSessions, cfg.Playback)

	rules := scoring.LoadRules(log)
	sources := services.NewScoreSources(services.ScoreSourceDeps{
		Sessions:         watchSessions,
		Notes:            repos.TimelineNote,
		Letters:          repos.PersonalLetter,
		SelfDescriptions: repos.SelfDescriptionAnswer,
		EmotionMatches:   repos.EmotionMatchAttempt,
		EmotionLogs:      repos.EmotionLogEntry,
	})
	score := services.NewScoreService(log, rules, sources)
	board := services.NewLeaderboardService(log, repos.Profile, score, rules, cfg.LeaderboardConcurrency)

	return Services{
		Notifier:     notifier,
		WatchSession: watchSessions,
		Playback:     playback,
		Rules:        rules,
		Score:        score,
		Leaderboard:  board,
	}
}

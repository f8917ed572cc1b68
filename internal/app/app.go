package app

import (
	"context"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/yungbote/calmpath-backend/internal/data/db"
	apphttp "github.com/yungbote/calmpath-backend/internal/http"
	"github.com/yungbote/calmpath-backend/internal/observability"
	"github.com/yungbote/calmpath-backend/internal/platform/logger"
	"github.com/yungbote/calmpath-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *apphttp.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	SSEHub   *realtime.SSEHub

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, cfg.Otel)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if cfg.AutoMigrate {
		if err := pg.AutoMigrateAll(); err != nil {
			_ = pg.Close()
			log.Sync()
			return nil, fmt.Errorf("postgres automigrate: %w", err)
		}
	}
	theDB := pg.DB()

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	ssehub := realtime.NewSSEHub(log)
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients)
	handlerset := wireHandlers(log, pg, serviceset, ssehub)
	middleware := wireMiddleware(log, cfg)

	server := apphttp.NewServer(":"+cfg.Port, apphttp.RouterConfig{
		Log:                 log,
		ServiceName:         cfg.Otel.ServiceName,
		AllowOrigins:        cfg.AllowOrigins,
		AuthMiddleware:      middleware.Auth,
		HealthHandler:       handlerset.Health,
		WatchSessionHandler: handlerset.WatchSession,
		ScoreHandler:        handlerset.Score,
		RealtimeHandler:     handlerset.Realtime,
	})

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		SSEHub:       ssehub,
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

// Start begins forwarding bus messages into the local hub.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := a.Clients.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
		cancel()
		return fmt.Errorf("start engagement forwarder: %w", err)
	}
	a.cancel = cancel
	return nil
}

// Run serves HTTP until ctx ends.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Serving HTTP", "port", a.Cfg.Port)
	return a.Server.Run(ctx, a.Cfg.ShutdownTimeout)
}

// Close stops the forwarder, waits for background skip writes, then releases the
// bus, the tracer and the database pool.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.Playback != nil {
		a.Services.Playback.Wait()
	}
	if a.Clients.Bus != nil {
		if err := a.Clients.Bus.Close(); err != nil {
			a.Log.Warn("bus close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("postgres close failed", "error", err)
		}
	}
	a.Log.Sync()
}

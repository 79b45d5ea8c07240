package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/Kanchan-Club/seisan-api/app/eventbus"
	"github.com/Kanchan-Club/seisan-api/app/jobs"
	"github.com/Kanchan-Club/seisan-api/app/modules/group"
	"github.com/Kanchan-Club/seisan-api/app/modules/session"
	sessionservice "github.com/Kanchan-Club/seisan-api/app/modules/session/application"
	"github.com/Kanchan-Club/seisan-api/app/modules/settlement"
	"github.com/Kanchan-Club/seisan-api/app/modules/stats"
	syncmodule "github.com/Kanchan-Club/seisan-api/app/modules/sync"
	"github.com/Kanchan-Club/seisan-api/app/observability"
	"github.com/Kanchan-Club/seisan-api/app/shared/httpmw"
	"github.com/Kanchan-Club/seisan-api/config"
	"github.com/Kanchan-Club/seisan-api/db/bundb"
)

// App owns the shared infrastructure and the module set. Modules only
// talk to each other through the interfaces exchanged here.
type App struct {
	Config *config.Config
	Obs    *observability.Observability

	db     *bundb.DBService
	bus    eventbus.EventBus
	router chi.Router
	queue  *jobs.QueueService

	GroupModule      *group.Module
	SessionModule    *session.Module
	SettlementModule *settlement.Module
	StatsModule      *stats.Module
	SyncModule       *syncmodule.Module

	httpServer *http.Server
}

// NewApp wires the full application. Nothing is running yet; call Run.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	obs := observability.New(cfg.Observability)
	logger := obs.Logger

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	bus, err := eventbus.New(ctx, cfg.NATS.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	if err := eventbus.InitializeStreams(ctx, bus, logger); err != nil {
		return nil, fmt.Errorf("failed to initialize streams: %w", err)
	}

	router := newRouter(cfg, logger)

	groupModule, err := group.NewModule(ctx, cfg, obs, bus, router, dbService.GetDB())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize group module: %w", err)
	}

	settlementModule, err := settlement.NewModule(ctx, obs, dbService.Session, router)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize settlement module: %w", err)
	}

	var (
		queue   *jobs.QueueService
		notices sessionservice.NoticeEnqueuer
	)
	if cfg.Jobs.Enabled {
		queue, err = jobs.NewQueueService(ctx, cfg.Postgres.DSN, cfg.Jobs.MaxWorkers, dbService.Session, bus, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize job queue: %w", err)
		}
		notices = queue
	}

	sessionModule, err := session.NewModule(ctx, cfg, obs, bus, notices, groupModule.GetService(), router, dbService.GetDB())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session module: %w", err)
	}

	statsModule, err := stats.NewModule(ctx, obs, dbService.Session, dbService.Group, router)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize stats module: %w", err)
	}

	syncModule, err := syncmodule.NewModule(ctx, obs, bus)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sync module: %w", err)
	}

	return &App{
		Config:           cfg,
		Obs:              obs,
		db:               dbService,
		bus:              bus,
		router:           router,
		queue:            queue,
		GroupModule:      groupModule,
		SessionModule:    sessionModule,
		SettlementModule: settlementModule,
		StatsModule:      statsModule,
		SyncModule:       syncModule,
	}, nil
}

func newRouter(cfg *config.Config, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(httpmw.RequestLogger(logger))
	r.Use(httpmw.CORS(cfg.HTTP.AllowedOrigins))
	r.Use(httpmw.RateLimit(httpmw.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimitRPS), cfg.HTTP.RateLimitBurst)))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Run starts the modules, the job queue, and the HTTP server, then
// blocks until ctx is cancelled.
func (app *App) Run(ctx context.Context) error {
	logger := app.Obs.Logger

	app.Obs.ServeMetrics(app.Config.Observability.MetricsAddress)

	if app.queue != nil {
		if err := app.queue.Start(ctx); err != nil {
			return fmt.Errorf("failed to start job queue: %w", err)
		}
	}

	var wg sync.WaitGroup
	for _, m := range []interface {
		Run(context.Context, *sync.WaitGroup)
	}{
		app.GroupModule,
		app.SessionModule,
		app.SettlementModule,
		app.StatsModule,
		app.SyncModule,
	} {
		wg.Add(1)
		go m.Run(ctx, &wg)
	}

	app.httpServer = &http.Server{
		Addr:              app.Config.HTTP.Addr,
		Handler:           app.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "HTTP server listening", slog.String("addr", app.Config.HTTP.Addr))
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	wg.Wait()
	return nil
}

// Close shuts everything down in reverse dependency order.
func (app *App) Close(ctx context.Context) error {
	logger := app.Obs.Logger

	if app.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", slog.Any("error", err))
		}
	}

	if app.queue != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.queue.Stop(stopCtx); err != nil {
			logger.Error("Job queue shutdown failed", slog.Any("error", err))
		}
	}

	for _, closeFn := range []func() error{
		app.SyncModule.Close,
		app.StatsModule.Close,
		app.SettlementModule.Close,
		app.SessionModule.Close,
		app.GroupModule.Close,
		app.bus.Close,
		app.db.Close,
	} {
		if err := closeFn(); err != nil {
			logger.Error("Shutdown step failed", slog.Any("error", err))
		}
	}

	return app.Obs.Shutdown(ctx)
}

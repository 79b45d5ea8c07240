package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	"github.com/Kanchan-Club/seisan-api/app/eventbus"
	groupservice "github.com/Kanchan-Club/seisan-api/app/modules/group/application"
	sessionservice "github.com/Kanchan-Club/seisan-api/app/modules/session/application"
	sessionhandlers "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/handlers"
	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
	"github.com/Kanchan-Club/seisan-api/app/observability"
	"github.com/Kanchan-Club/seisan-api/config"
)

// Module wires the session service, repository, and HTTP handlers
// together.
type Module struct {
	service    sessionservice.Service
	repo       sessiondb.Repository
	handlers   *sessionhandlers.SessionHandlers
	cancelFunc context.CancelFunc
	logger     *slog.Logger
}

// NewModule creates a new session module. notices may be nil when
// background jobs are disabled.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	bus eventbus.EventBus,
	notices sessionservice.NoticeEnqueuer,
	groups groupservice.Service,
	httpRouter chi.Router,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing session module")

	repo := sessiondb.NewRepository(db)
	metrics := observability.NewServiceMetrics(obs.Registry, "session")

	service := sessionservice.NewSessionService(
		repo,
		groups,
		bus,
		notices,
		logger,
		metrics,
		obs.Tracer,
		db,
		nil,
	)
	handlers := sessionhandlers.NewSessionHandlers(service, logger)

	if httpRouter != nil {
		handlers.RegisterRoutes(httpRouter)
	}

	return &Module{
		service:  service,
		repo:     repo,
		handlers: handlers,
		logger:   logger,
	}, nil
}

// Run keeps the module alive until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting session module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Session module goroutine stopped")
}

// Close stops the session module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}

// GetService returns the session service for use by other modules.
func (m *Module) GetService() sessionservice.Service {
	return m.service
}

// GetRepository returns the session repository for read-only consumers
// like the stats module.
func (m *Module) GetRepository() sessiondb.Repository {
	return m.repo
}

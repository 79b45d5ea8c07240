package group

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	"github.com/Kanchan-Club/seisan-api/app/eventbus"
	groupservice "github.com/Kanchan-Club/seisan-api/app/modules/group/application"
	grouphandlers "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/handlers"
	groupinvites "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/invites"
	groupdb "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/repositories"
	"github.com/Kanchan-Club/seisan-api/app/observability"
	"github.com/Kanchan-Club/seisan-api/config"
)

// Module wires the group service, repository, and HTTP handlers together.
type Module struct {
	service    groupservice.Service
	repo       groupdb.Repository
	handlers   *grouphandlers.GroupHandlers
	cancelFunc context.CancelFunc
	logger     *slog.Logger
}

// NewModule creates a new group module.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	bus eventbus.EventBus,
	httpRouter chi.Router,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing group module")

	repo := groupdb.NewRepository(db)
	invites := groupinvites.NewProvider(cfg.Invite.Secret, cfg.Invite.DefaultTTL, cfg.Invite.PWABaseURL)
	metrics := observability.NewServiceMetrics(obs.Registry, "group")

	service := groupservice.NewGroupService(repo, invites, bus, logger, metrics, obs.Tracer, db)
	handlers := grouphandlers.NewGroupHandlers(service, logger)

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

// Run keeps the module alive until ctx is cancelled. The group module is
// request-driven, so there is no background work beyond waiting.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting group module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Group module goroutine stopped")
}

// Close stops the group module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}

// GetService returns the group service for use by other modules.
func (m *Module) GetService() groupservice.Service {
	return m.service
}

// GetRepository returns the group repository for read-only use by other
// modules.
func (m *Module) GetRepository() groupdb.Repository {
	return m.repo
}

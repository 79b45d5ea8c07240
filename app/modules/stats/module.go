package stats

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-chi/chi/v5"

	groupdb "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/repositories"
	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
	statsservice "github.com/Kanchan-Club/seisan-api/app/modules/stats/application"
	statshandlers "github.com/Kanchan-Club/seisan-api/app/modules/stats/infrastructure/handlers"
	"github.com/Kanchan-Club/seisan-api/app/observability"
)

// Module wires the stats service and HTTP handlers together. Stats are
// derived entirely from the group and session modules' stores; this
// module owns no tables.
type Module struct {
	service    statsservice.Service
	handlers   *statshandlers.StatsHandlers
	cancelFunc context.CancelFunc
	logger     *slog.Logger
}

// NewModule creates a new stats module.
func NewModule(
	ctx context.Context,
	obs *observability.Observability,
	sessions sessiondb.Repository,
	groups groupdb.Repository,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing stats module")

	metrics := observability.NewServiceMetrics(obs.Registry, "stats")
	service := statsservice.NewStatsService(sessions, groups, logger, metrics, obs.Tracer)
	handlers := statshandlers.NewStatsHandlers(service, logger)

	if httpRouter != nil {
		handlers.RegisterRoutes(httpRouter)
	}

	return &Module{
		service:  service,
		handlers: handlers,
		logger:   logger,
	}, nil
}

// Run keeps the module alive until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting stats module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Stats module goroutine stopped")
}

// Close stops the stats module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}

// GetService returns the stats service for use by other modules.
func (m *Module) GetService() statsservice.Service {
	return m.service
}

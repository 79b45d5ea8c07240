package settlement

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-chi/chi/v5"

	settlementservice "github.com/Kanchan-Club/seisan-api/app/modules/settlement/application"
	settlementhandlers "github.com/Kanchan-Club/seisan-api/app/modules/settlement/infrastructure/handlers"
	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
	"github.com/Kanchan-Club/seisan-api/app/observability"
)

// Module wires the settlement service and HTTP handlers together. It
// reads sessions through the session module's repository and never
// writes.
type Module struct {
	service    settlementservice.Service
	handlers   *settlementhandlers.SettlementHandlers
	cancelFunc context.CancelFunc
	logger     *slog.Logger
}

// NewModule creates a new settlement module.
func NewModule(
	ctx context.Context,
	obs *observability.Observability,
	sessions sessiondb.Repository,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing settlement module")

	metrics := observability.NewServiceMetrics(obs.Registry, "settlement")
	service := settlementservice.NewSettlementService(sessions, logger, metrics, obs.Tracer)
	handlers := settlementhandlers.NewSettlementHandlers(service, logger)

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
	m.logger.InfoContext(ctx, "Starting settlement module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Settlement module goroutine stopped")
}

// Close stops the settlement module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}

// GetService returns the settlement service for use by other modules.
func (m *Module) GetService() settlementservice.Service {
	return m.service
}

package sync

import (
	"context"
	"log/slog"
	gosync "sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/Kanchan-Club/seisan-api/app/eventbus"
	syncservice "github.com/Kanchan-Club/seisan-api/app/modules/sync/application"
	syncrouter "github.com/Kanchan-Club/seisan-api/app/modules/sync/infrastructure/router"
	"github.com/Kanchan-Club/seisan-api/app/observability"
)

// Module runs the watermill router that broadcasts change notices to
// per-group sync subjects. It owns no storage; everything flows from
// the event bus back onto the event bus.
type Module struct {
	service    *syncservice.NoticeService
	router     *message.Router
	syncRouter *syncrouter.SyncRouter
	cancelFunc context.CancelFunc
	logger     *slog.Logger
}

// NewModule creates a new sync module.
func NewModule(
	ctx context.Context,
	obs *observability.Observability,
	bus eventbus.EventBus,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing sync module")

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, err
	}

	metrics := observability.NewServiceMetrics(obs.Registry, "sync")
	service := syncservice.NewNoticeService(bus, logger, metrics, obs.Tracer)

	sr := syncrouter.NewSyncRouter(logger, router, bus.Subscriber())
	if err := sr.Configure(ctx, service); err != nil {
		return nil, err
	}

	return &Module{
		service:    service,
		router:     router,
		syncRouter: sr,
		logger:     logger,
	}, nil
}

// Run starts the router and blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *gosync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting sync module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.router.Run(ctx); err != nil {
		m.logger.ErrorContext(ctx, "Sync router stopped with error", slog.Any("error", err))
	}
	m.logger.InfoContext(ctx, "Sync module goroutine stopped")
}

// Close stops the sync module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return m.syncRouter.Close()
}

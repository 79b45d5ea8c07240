package syncrouter

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	groupdomain "github.com/Kanchan-Club/seisan-api/app/modules/group/domain"
	sessiondomain "github.com/Kanchan-Club/seisan-api/app/modules/session/domain"
	syncservice "github.com/Kanchan-Club/seisan-api/app/modules/sync/application"
)

// SyncRouter registers the watermill handlers that fan update events
// out to per-group sync subjects.
type SyncRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber message.Subscriber
}

// NewSyncRouter creates a new SyncRouter.
func NewSyncRouter(logger *slog.Logger, router *message.Router, subscriber message.Subscriber) *SyncRouter {
	return &SyncRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
	}
}

// Configure adds middleware and registers handlers. The service
// publishes through the event bus itself, so handlers are
// no-publisher: a returned error triggers retry, not a reply.
func (r *SyncRouter) Configure(ctx context.Context, service *syncservice.NoticeService) error {
	r.router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{MaxRetries: 3}.Middleware,
	)

	r.logger.InfoContext(ctx, "Registering sync module handlers",
		slog.String("group_subject", groupdomain.GroupUpdatedSubject),
		slog.String("session_subject", sessiondomain.SessionUpdatedSubject),
	)

	r.router.AddNoPublisherHandler(
		"sync."+groupdomain.GroupUpdatedSubject,
		groupdomain.GroupUpdatedSubject,
		r.subscriber,
		service.HandleGroupUpdated,
	)
	r.router.AddNoPublisherHandler(
		"sync."+sessiondomain.SessionUpdatedSubject,
		sessiondomain.SessionUpdatedSubject,
		r.subscriber,
		service.HandleSessionUpdated,
	)
	return nil
}

// Close shuts down the router.
func (r *SyncRouter) Close() error {
	return r.router.Close()
}

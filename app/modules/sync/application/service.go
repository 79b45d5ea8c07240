package syncservice

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kanchan-Club/seisan-api/app/eventbus"
	groupdomain "github.com/Kanchan-Club/seisan-api/app/modules/group/domain"
	sessiondomain "github.com/Kanchan-Club/seisan-api/app/modules/session/domain"
	syncdomain "github.com/Kanchan-Club/seisan-api/app/modules/sync/domain"
	"github.com/Kanchan-Club/seisan-api/app/observability"
)

// NoticeService turns group and session update events into compact
// change notices on per-group subjects. Returning an error from a
// handler lets the router's retry middleware redeliver the message.
type NoticeService struct {
	bus     eventbus.EventBus
	logger  *slog.Logger
	metrics observability.ServiceMetrics
	tracer  trace.Tracer
	now     func() time.Time
}

// NewNoticeService creates a new NoticeService.
func NewNoticeService(
	bus eventbus.EventBus,
	logger *slog.Logger,
	metrics observability.ServiceMetrics,
	tracer trace.Tracer,
) *NoticeService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoopMetrics()
	}
	return &NoticeService{
		bus:     bus,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		now:     time.Now,
	}
}

// HandleGroupUpdated fans a group.updated.v1 event out to the group's
// sync subject.
func (s *NoticeService) HandleGroupUpdated(msg *message.Message) error {
	var payload groupdomain.GroupUpdatedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		// A malformed payload never gets better on redelivery.
		s.logger.Error("Dropping malformed group event",
			slog.String("message_id", msg.UUID),
			slog.Any("error", err),
		)
		return nil
	}

	notice := syncdomain.ChangeNotice{
		Scope:      syncdomain.ScopeGroup,
		GroupUUID:  payload.GroupUUID,
		Action:     payload.Action,
		OccurredAt: s.now().UTC(),
	}
	return s.publish(msg, notice)
}

// HandleSessionUpdated fans a session.updated.v1 event out to the
// owning group's sync subject.
func (s *NoticeService) HandleSessionUpdated(msg *message.Message) error {
	var payload sessiondomain.SessionUpdatedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("Dropping malformed session event",
			slog.String("message_id", msg.UUID),
			slog.Any("error", err),
		)
		return nil
	}

	sessionUUID := payload.SessionUUID
	notice := syncdomain.ChangeNotice{
		Scope:       syncdomain.ScopeSession,
		GroupUUID:   payload.GroupUUID,
		SessionUUID: &sessionUUID,
		Action:      payload.Action,
		OccurredAt:  s.now().UTC(),
	}
	return s.publish(msg, notice)
}

func (s *NoticeService) publish(msg *message.Message, notice syncdomain.ChangeNotice) error {
	ctx := msg.Context()
	subject := syncdomain.GroupSubject(notice.GroupUUID)

	if err := s.bus.Publish(ctx, subject, notice); err != nil {
		s.metrics.RecordOperationFailure(ctx, "PublishNotice")
		return fmt.Errorf("publish change notice on %s: %w", subject, err)
	}

	s.metrics.RecordOperationSuccess(ctx, "PublishNotice")
	s.logger.DebugContext(ctx, "Change notice published",
		slog.String("subject", subject),
		slog.String("scope", string(notice.Scope)),
		slog.String("action", notice.Action),
	)
	return nil
}

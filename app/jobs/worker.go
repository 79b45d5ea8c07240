package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"

	"github.com/Kanchan-Club/seisan-api/app/eventbus"
	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
	settlementservice "github.com/Kanchan-Club/seisan-api/app/modules/settlement/application"
	syncdomain "github.com/Kanchan-Club/seisan-api/app/modules/sync/domain"
)

// SettlementNoticeWorker renders a settled session's final ledger and
// publishes it on the group's sync subject. Errors are returned so
// River retries with backoff; the notice is idempotent on redelivery.
type SettlementNoticeWorker struct {
	river.WorkerDefaults[SettlementNoticeJob]

	sessions sessiondb.Repository
	bus      eventbus.EventBus
	logger   *slog.Logger
}

// NewSettlementNoticeWorker creates a new SettlementNoticeWorker.
func NewSettlementNoticeWorker(
	sessions sessiondb.Repository,
	bus eventbus.EventBus,
	logger *slog.Logger,
) *SettlementNoticeWorker {
	return &SettlementNoticeWorker{
		sessions: sessions,
		bus:      bus,
		logger:   logger,
	}
}

func (w *SettlementNoticeWorker) Work(ctx context.Context, job *river.Job[SettlementNoticeJob]) error {
	sessionUUID := job.Args.SessionUUID
	w.logger.InfoContext(ctx, "Working settlement notice job",
		slog.String("session_uuid", sessionUUID.String()),
		slog.Int("attempt", job.Attempt),
	)

	session, err := w.sessions.GetSession(ctx, nil, sessionUUID)
	if err != nil {
		return fmt.Errorf("load session %s: %w", sessionUUID, err)
	}

	payload := SettlementNoticePayload{
		SessionUUID: sessionUUID,
		GroupUUID:   session.GroupUUID,
		Text:        settlementservice.ShareText(session),
		SettledAt:   time.Now().UTC(),
	}
	subject := syncdomain.GroupSubject(session.GroupUUID)
	if err := w.bus.Publish(ctx, subject, payload); err != nil {
		return fmt.Errorf("publish settlement notice on %s: %w", subject, err)
	}

	w.logger.InfoContext(ctx, "Settlement notice published",
		slog.String("session_uuid", sessionUUID.String()),
		slog.String("subject", subject),
	)
	return nil
}

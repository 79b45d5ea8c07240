package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/Kanchan-Club/seisan-api/app/eventbus"
	sessionservice "github.com/Kanchan-Club/seisan-api/app/modules/session/application"
	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
)

const noticeQueue = "notices"

// queueConfig sizes both queues from the configured worker cap.
func queueConfig(maxWorkers int) map[string]river.QueueConfig {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return map[string]river.QueueConfig{
		river.QueueDefault: {MaxWorkers: maxWorkers},
		noticeQueue:        {MaxWorkers: maxWorkers},
	}
}

// QueueService runs the River job client. It is the session module's
// NoticeEnqueuer; River owns its own pgx pool because it cannot share
// the bun database/sql connection.
type QueueService struct {
	client *river.Client[pgx.Tx]
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ sessionservice.NoticeEnqueuer = (*QueueService)(nil)

// NewQueueService creates the pool, registers workers, and builds the
// River client. Start must be called before jobs are worked.
func NewQueueService(
	ctx context.Context,
	dsn string,
	maxWorkers int,
	sessions sessiondb.Repository,
	bus eventbus.EventBus,
	logger *slog.Logger,
) (*QueueService, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN for River: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool for River: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database for River: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewSettlementNoticeWorker(sessions, bus, logger))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:  queueConfig(maxWorkers),
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create River client: %w", err)
	}

	logger.InfoContext(ctx, "Job queue service initialized")
	return &QueueService{
		client: client,
		pool:   pool,
		logger: logger,
	}, nil
}

// Start begins working jobs.
func (s *QueueService) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("start River client: %w", err)
	}
	s.logger.InfoContext(ctx, "Job queue service started")
	return nil
}

// Stop drains in-flight jobs and closes the pool.
func (s *QueueService) Stop(ctx context.Context) error {
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("stop River client: %w", err)
	}
	s.pool.Close()
	s.logger.InfoContext(ctx, "Job queue service stopped")
	return nil
}

// EnqueueSettlementNotice schedules the settlement broadcast for a
// settled session. Unique by args so re-settling cannot double-send
// while a job is pending.
func (s *QueueService) EnqueueSettlementNotice(ctx context.Context, sessionUUID uuid.UUID) error {
	result, err := s.client.Insert(ctx, SettlementNoticeJob{SessionUUID: sessionUUID}, &river.InsertOpts{
		Queue: noticeQueue,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		return fmt.Errorf("enqueue settlement notice for %s: %w", sessionUUID, err)
	}

	s.logger.InfoContext(ctx, "Settlement notice job enqueued",
		slog.String("session_uuid", sessionUUID.String()),
		slog.Int64("job_id", result.Job.ID),
	)
	return nil
}

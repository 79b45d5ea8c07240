package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/Kanchan-Club/seisan-api/app/eventbus"
	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
)

type FakeSessionRepo struct {
	GetSessionFunc func(ctx context.Context, db bun.IDB, sessionUUID uuid.UUID) (*sessiondb.Session, error)
}

func (f *FakeSessionRepo) GetSession(ctx context.Context, db bun.IDB, sessionUUID uuid.UUID) (*sessiondb.Session, error) {
	if f.GetSessionFunc != nil {
		return f.GetSessionFunc(ctx, db, sessionUUID)
	}
	return nil, sessiondb.ErrNotFound
}

func (f *FakeSessionRepo) CreateSession(ctx context.Context, db bun.IDB, session *sessiondb.Session) error {
	return nil
}

func (f *FakeSessionRepo) ListSessionsByGroup(ctx context.Context, db bun.IDB, groupUUID uuid.UUID) ([]sessiondb.Session, error) {
	return nil, nil
}

func (f *FakeSessionRepo) ListSessions(ctx context.Context, db bun.IDB) ([]sessiondb.Session, error) {
	return nil, nil
}

func (f *FakeSessionRepo) UpdateChipCounts(ctx context.Context, db bun.IDB, sessionUUID uuid.UUID, counts []*int) error {
	return nil
}

func (f *FakeSessionRepo) UpdateStatus(ctx context.Context, db bun.IDB, sessionUUID uuid.UUID, status string) error {
	return nil
}

func (f *FakeSessionRepo) CreateRound(ctx context.Context, db bun.IDB, round *sessiondb.Round) error {
	return nil
}

func (f *FakeSessionRepo) UpdateRound(ctx context.Context, db bun.IDB, round *sessiondb.Round) error {
	return nil
}

func (f *FakeSessionRepo) DeleteRound(ctx context.Context, db bun.IDB, roundUUID uuid.UUID) error {
	return nil
}

func (f *FakeSessionRepo) CreateExpense(ctx context.Context, db bun.IDB, expense *sessiondb.Expense) error {
	return nil
}

func (f *FakeSessionRepo) DeleteExpense(ctx context.Context, db bun.IDB, expenseUUID uuid.UUID) error {
	return nil
}

var _ sessiondb.Repository = (*FakeSessionRepo)(nil)

type PublishedEvent struct {
	Subject string
	Payload any
}

type FakeEventBus struct {
	Published   []PublishedEvent
	PublishFunc func(ctx context.Context, subject string, payload any) error
}

func (f *FakeEventBus) Publish(ctx context.Context, subject string, payload any) error {
	f.Published = append(f.Published, PublishedEvent{Subject: subject, Payload: payload})
	if f.PublishFunc != nil {
		return f.PublishFunc(ctx, subject, payload)
	}
	return nil
}

func (f *FakeEventBus) Subscriber() message.Subscriber { return nil }

func (f *FakeEventBus) EnsureStream(ctx context.Context, streamName string, subjects ...string) error {
	return nil
}

func (f *FakeEventBus) Close() error { return nil }

var _ eventbus.EventBus = (*FakeEventBus)(nil)

func noticeJob(sessionUUID uuid.UUID) *river.Job[SettlementNoticeJob] {
	return &river.Job[SettlementNoticeJob]{
		JobRow: &rivertype.JobRow{Attempt: 1},
		Args:   SettlementNoticeJob{SessionUUID: sessionUUID},
	}
}

func TestSettlementNoticeWorker(t *testing.T) {
	sessionUUID := uuid.New()
	groupUUID := uuid.New()

	fetches := 0
	repo := &FakeSessionRepo{
		GetSessionFunc: func(ctx context.Context, db bun.IDB, u uuid.UUID) (*sessiondb.Session, error) {
			require.Equal(t, sessionUUID, u)
			fetches++
			return &sessiondb.Session{
				UUID:      u,
				GroupUUID: groupUUID,
				Date:      time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC),
				Members:   []string{"Alice", "Bob", "Chika", "Daiki"},
			}, nil
		},
	}
	bus := &FakeEventBus{}

	worker := NewSettlementNoticeWorker(repo, bus, slog.Default())
	err := worker.Work(context.Background(), noticeJob(sessionUUID))
	require.NoError(t, err)

	// The session row feeds both the subject and the rendered text.
	assert.Equal(t, 1, fetches)

	require.Len(t, bus.Published, 1)
	assert.Equal(t, "sync.group."+groupUUID.String(), bus.Published[0].Subject)

	payload, ok := bus.Published[0].Payload.(SettlementNoticePayload)
	require.True(t, ok)
	assert.Equal(t, sessionUUID, payload.SessionUUID)
	assert.Equal(t, groupUUID, payload.GroupUUID)
	assert.Contains(t, payload.Text, "📊 2026/03/14 精算")
	assert.Contains(t, payload.Text, "精算なし")
}

func TestSettlementNoticeWorkerSessionMissing(t *testing.T) {
	bus := &FakeEventBus{}
	worker := NewSettlementNoticeWorker(&FakeSessionRepo{}, bus, slog.Default())

	err := worker.Work(context.Background(), noticeJob(uuid.New()))
	assert.ErrorIs(t, err, sessiondb.ErrNotFound)
	assert.Empty(t, bus.Published)
}

func TestSettlementNoticeWorkerPublishFailure(t *testing.T) {
	sessionUUID := uuid.New()
	repo := &FakeSessionRepo{
		GetSessionFunc: func(ctx context.Context, db bun.IDB, u uuid.UUID) (*sessiondb.Session, error) {
			return &sessiondb.Session{UUID: u, GroupUUID: uuid.New()}, nil
		},
	}
	bus := &FakeEventBus{
		PublishFunc: func(ctx context.Context, subject string, payload any) error {
			return errors.New("nats down")
		},
	}

	worker := NewSettlementNoticeWorker(repo, bus, slog.Default())
	err := worker.Work(context.Background(), noticeJob(sessionUUID))
	assert.Error(t, err)
}

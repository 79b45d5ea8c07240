package sessionservice

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/Kanchan-Club/seisan-api/app/eventbus"
	groupservice "github.com/Kanchan-Club/seisan-api/app/modules/group/application"
	groupdomain "github.com/Kanchan-Club/seisan-api/app/modules/group/domain"
	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
)

// ------------------------
// Fake Session Repo
// ------------------------

type FakeSessionRepo struct {
	trace []string

	CreateSessionFunc       func(ctx context.Context, db bun.IDB, session *sessiondb.Session) error
	GetSessionFunc          func(ctx context.Context, db bun.IDB, sessionUUID uuid.UUID) (*sessiondb.Session, error)
	ListSessionsByGroupFunc func(ctx context.Context, db bun.IDB, groupUUID uuid.UUID) ([]sessiondb.Session, error)
	ListSessionsFunc        func(ctx context.Context, db bun.IDB) ([]sessiondb.Session, error)
	UpdateChipCountsFunc    func(ctx context.Context, db bun.IDB, sessionUUID uuid.UUID, counts []*int) error
	UpdateStatusFunc        func(ctx context.Context, db bun.IDB, sessionUUID uuid.UUID, status string) error
	CreateRoundFunc         func(ctx context.Context, db bun.IDB, round *sessiondb.Round) error
	UpdateRoundFunc         func(ctx context.Context, db bun.IDB, round *sessiondb.Round) error
	DeleteRoundFunc         func(ctx context.Context, db bun.IDB, roundUUID uuid.UUID) error
	CreateExpenseFunc       func(ctx context.Context, db bun.IDB, expense *sessiondb.Expense) error
	DeleteExpenseFunc       func(ctx context.Context, db bun.IDB, expenseUUID uuid.UUID) error
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{trace: []string{}}
}

func (f *FakeSessionRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeSessionRepo) CreateSession(ctx context.Context, db bun.IDB, session *sessiondb.Session) error {
	f.record("CreateSession")
	if f.CreateSessionFunc != nil {
		return f.CreateSessionFunc(ctx, db, session)
	}
	return nil
}

func (f *FakeSessionRepo) GetSession(ctx context.Context, db bun.IDB, sessionUUID uuid.UUID) (*sessiondb.Session, error) {
	f.record("GetSession")
	if f.GetSessionFunc != nil {
		return f.GetSessionFunc(ctx, db, sessionUUID)
	}
	return nil, sessiondb.ErrNotFound
}

func (f *FakeSessionRepo) ListSessionsByGroup(ctx context.Context, db bun.IDB, groupUUID uuid.UUID) ([]sessiondb.Session, error) {
	f.record("ListSessionsByGroup")
	if f.ListSessionsByGroupFunc != nil {
		return f.ListSessionsByGroupFunc(ctx, db, groupUUID)
	}
	return nil, nil
}

func (f *FakeSessionRepo) ListSessions(ctx context.Context, db bun.IDB) ([]sessiondb.Session, error) {
	f.record("ListSessions")
	if f.ListSessionsFunc != nil {
		return f.ListSessionsFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeSessionRepo) UpdateChipCounts(ctx context.Context, db bun.IDB, sessionUUID uuid.UUID, counts []*int) error {
	f.record("UpdateChipCounts")
	if f.UpdateChipCountsFunc != nil {
		return f.UpdateChipCountsFunc(ctx, db, sessionUUID, counts)
	}
	return nil
}

func (f *FakeSessionRepo) UpdateStatus(ctx context.Context, db bun.IDB, sessionUUID uuid.UUID, status string) error {
	f.record("UpdateStatus")
	if f.UpdateStatusFunc != nil {
		return f.UpdateStatusFunc(ctx, db, sessionUUID, status)
	}
	return nil
}

func (f *FakeSessionRepo) CreateRound(ctx context.Context, db bun.IDB, round *sessiondb.Round) error {
	f.record("CreateRound")
	if f.CreateRoundFunc != nil {
		return f.CreateRoundFunc(ctx, db, round)
	}
	return nil
}

func (f *FakeSessionRepo) UpdateRound(ctx context.Context, db bun.IDB, round *sessiondb.Round) error {
	f.record("UpdateRound")
	if f.UpdateRoundFunc != nil {
		return f.UpdateRoundFunc(ctx, db, round)
	}
	return nil
}

func (f *FakeSessionRepo) DeleteRound(ctx context.Context, db bun.IDB, roundUUID uuid.UUID) error {
	f.record("DeleteRound")
	if f.DeleteRoundFunc != nil {
		return f.DeleteRoundFunc(ctx, db, roundUUID)
	}
	return nil
}

func (f *FakeSessionRepo) CreateExpense(ctx context.Context, db bun.IDB, expense *sessiondb.Expense) error {
	f.record("CreateExpense")
	if f.CreateExpenseFunc != nil {
		return f.CreateExpenseFunc(ctx, db, expense)
	}
	return nil
}

func (f *FakeSessionRepo) DeleteExpense(ctx context.Context, db bun.IDB, expenseUUID uuid.UUID) error {
	f.record("DeleteExpense")
	if f.DeleteExpenseFunc != nil {
		return f.DeleteExpenseFunc(ctx, db, expenseUUID)
	}
	return nil
}

func (f *FakeSessionRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ sessiondb.Repository = (*FakeSessionRepo)(nil)

// ------------------------
// Fake Group Service
// ------------------------

type FakeGroupService struct {
	GetGroupFunc func(ctx context.Context, groupUUID uuid.UUID) (*groupdomain.GroupInfo, error)
}

func (f *FakeGroupService) GetGroup(ctx context.Context, groupUUID uuid.UUID) (*groupdomain.GroupInfo, error) {
	if f.GetGroupFunc != nil {
		return f.GetGroupFunc(ctx, groupUUID)
	}
	return &groupdomain.GroupInfo{UUID: groupUUID, Members: []string{"Alice", "Bob", "Chika", "Daiki"}}, nil
}

func (f *FakeGroupService) CreateGroup(ctx context.Context, name string, members []string) (*groupdomain.GroupInfo, error) {
	return nil, nil
}

func (f *FakeGroupService) ListGroups(ctx context.Context) ([]groupdomain.GroupInfo, error) {
	return nil, nil
}

func (f *FakeGroupService) RenameGroup(ctx context.Context, groupUUID uuid.UUID, name string) error {
	return nil
}

func (f *FakeGroupService) UpdateMembers(ctx context.Context, groupUUID uuid.UUID, members []string) error {
	return nil
}

func (f *FakeGroupService) CreateInvite(ctx context.Context, groupUUID uuid.UUID) (*groupservice.InviteInfo, error) {
	return nil, nil
}

func (f *FakeGroupService) JoinGroup(ctx context.Context, token, memberName string) (*groupdomain.GroupInfo, error) {
	return nil, nil
}

var _ groupservice.Service = (*FakeGroupService)(nil)

// ------------------------
// Fake Event Bus
// ------------------------

type FakeEventBus struct {
	Published   []PublishedEvent
	PublishFunc func(ctx context.Context, subject string, payload any) error
}

type PublishedEvent struct {
	Subject string
	Payload any
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

// ------------------------
// Fake Notice Enqueuer
// ------------------------

type FakeNoticeEnqueuer struct {
	Enqueued    []uuid.UUID
	EnqueueFunc func(ctx context.Context, sessionUUID uuid.UUID) error
}

func (f *FakeNoticeEnqueuer) EnqueueSettlementNotice(ctx context.Context, sessionUUID uuid.UUID) error {
	f.Enqueued = append(f.Enqueued, sessionUUID)
	if f.EnqueueFunc != nil {
		return f.EnqueueFunc(ctx, sessionUUID)
	}
	return nil
}

var _ NoticeEnqueuer = (*FakeNoticeEnqueuer)(nil)

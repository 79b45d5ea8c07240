package groupservice

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/Kanchan-Club/seisan-api/app/eventbus"
	groupdb "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/repositories"
)

// ------------------------
// Fake Group Repo
// ------------------------

type FakeGroupRepo struct {
	trace []string

	CreateFunc        func(ctx context.Context, db bun.IDB, group *groupdb.Group) error
	GetByUUIDFunc     func(ctx context.Context, db bun.IDB, groupUUID uuid.UUID) (*groupdb.Group, error)
	ListFunc          func(ctx context.Context, db bun.IDB) ([]groupdb.Group, error)
	UpdateNameFunc    func(ctx context.Context, db bun.IDB, groupUUID uuid.UUID, name string) error
	UpdateMembersFunc func(ctx context.Context, db bun.IDB, groupUUID uuid.UUID, members []string) error
}

func NewFakeGroupRepo() *FakeGroupRepo {
	return &FakeGroupRepo{trace: []string{}}
}

func (f *FakeGroupRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeGroupRepo) Create(ctx context.Context, db bun.IDB, group *groupdb.Group) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, db, group)
	}
	return nil
}

func (f *FakeGroupRepo) GetByUUID(ctx context.Context, db bun.IDB, groupUUID uuid.UUID) (*groupdb.Group, error) {
	f.record("GetByUUID")
	if f.GetByUUIDFunc != nil {
		return f.GetByUUIDFunc(ctx, db, groupUUID)
	}
	return nil, groupdb.ErrNotFound
}

func (f *FakeGroupRepo) List(ctx context.Context, db bun.IDB) ([]groupdb.Group, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeGroupRepo) UpdateName(ctx context.Context, db bun.IDB, groupUUID uuid.UUID, name string) error {
	f.record("UpdateName")
	if f.UpdateNameFunc != nil {
		return f.UpdateNameFunc(ctx, db, groupUUID, name)
	}
	return nil
}

func (f *FakeGroupRepo) UpdateMembers(ctx context.Context, db bun.IDB, groupUUID uuid.UUID, members []string) error {
	f.record("UpdateMembers")
	if f.UpdateMembersFunc != nil {
		return f.UpdateMembersFunc(ctx, db, groupUUID, members)
	}
	return nil
}

func (f *FakeGroupRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ groupdb.Repository = (*FakeGroupRepo)(nil)

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

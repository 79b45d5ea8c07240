package statsservice

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	groupdb "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/repositories"
	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
)

// FakeSessionRepo satisfies sessiondb.Repository. Stats only reads, so
// only ListSessionsFunc has a meaningful default; the write methods are
// no-ops.
type FakeSessionRepo struct {
	ListSessionsFunc func(ctx context.Context, db bun.IDB) ([]sessiondb.Session, error)
}

func (f *FakeSessionRepo) ListSessions(ctx context.Context, db bun.IDB) ([]sessiondb.Session, error) {
	if f.ListSessionsFunc != nil {
		return f.ListSessionsFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeSessionRepo) CreateSession(ctx context.Context, db bun.IDB, session *sessiondb.Session) error {
	return nil
}

func (f *FakeSessionRepo) GetSession(ctx context.Context, db bun.IDB, sessionUUID uuid.UUID) (*sessiondb.Session, error) {
	return nil, sessiondb.ErrNotFound
}

func (f *FakeSessionRepo) ListSessionsByGroup(ctx context.Context, db bun.IDB, groupUUID uuid.UUID) ([]sessiondb.Session, error) {
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

// FakeGroupRepo satisfies groupdb.Repository for group name lookups.
type FakeGroupRepo struct {
	ListFunc func(ctx context.Context, db bun.IDB) ([]groupdb.Group, error)
}

func (f *FakeGroupRepo) List(ctx context.Context, db bun.IDB) ([]groupdb.Group, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeGroupRepo) Create(ctx context.Context, db bun.IDB, group *groupdb.Group) error {
	return nil
}

func (f *FakeGroupRepo) GetByUUID(ctx context.Context, db bun.IDB, groupUUID uuid.UUID) (*groupdb.Group, error) {
	return nil, groupdb.ErrNotFound
}

func (f *FakeGroupRepo) UpdateName(ctx context.Context, db bun.IDB, groupUUID uuid.UUID, name string) error {
	return nil
}

func (f *FakeGroupRepo) UpdateMembers(ctx context.Context, db bun.IDB, groupUUID uuid.UUID, members []string) error {
	return nil
}

var _ groupdb.Repository = (*FakeGroupRepo)(nil)

package settlementservice

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
)

// ------------------------
// Fake Session Repo
// ------------------------

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

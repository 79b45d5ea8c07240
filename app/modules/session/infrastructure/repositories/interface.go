package sessiondb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for session persistence.
type Repository interface {
	// CreateSession inserts a new session.
	CreateSession(ctx context.Context, db bun.IDB, session *Session) error

	// GetSession retrieves a session with its rounds (by seq) and expenses.
	GetSession(ctx context.Context, db bun.IDB, sessionUUID uuid.UUID) (*Session, error)

	// ListSessionsByGroup retrieves a group's sessions, newest date first,
	// with rounds and expenses loaded.
	ListSessionsByGroup(ctx context.Context, db bun.IDB, groupUUID uuid.UUID) ([]Session, error)

	// ListSessions retrieves every session with rounds and expenses
	// loaded, oldest date first. Used by the stats module.
	ListSessions(ctx context.Context, db bun.IDB) ([]Session, error)

	// UpdateChipCounts replaces a session's chip count vector.
	UpdateChipCounts(ctx context.Context, db bun.IDB, sessionUUID uuid.UUID, counts []*int) error

	// UpdateStatus moves a session between active and settled.
	UpdateStatus(ctx context.Context, db bun.IDB, sessionUUID uuid.UUID, status string) error

	// CreateRound inserts a round.
	CreateRound(ctx context.Context, db bun.IDB, round *Round) error

	// UpdateRound replaces a round's scores and tobi.
	UpdateRound(ctx context.Context, db bun.IDB, round *Round) error

	// DeleteRound removes a round.
	DeleteRound(ctx context.Context, db bun.IDB, roundUUID uuid.UUID) error

	// CreateExpense inserts an expense.
	CreateExpense(ctx context.Context, db bun.IDB, expense *Expense) error

	// DeleteExpense removes an expense.
	DeleteExpense(ctx context.Context, db bun.IDB, expenseUUID uuid.UUID) error
}

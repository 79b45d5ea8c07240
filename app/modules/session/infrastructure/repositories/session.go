package sessiondb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Errors returned when a row is missing.
var (
	ErrNotFound        = errors.New("session not found")
	ErrRoundNotFound   = errors.New("round not found")
	ErrExpenseNotFound = errors.New("expense not found")
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new session repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// CreateSession inserts a new session.
func (r *Impl) CreateSession(ctx context.Context, db bun.IDB, session *Session) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(session).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session with its rounds (by seq) and expenses.
func (r *Impl) GetSession(ctx context.Context, db bun.IDB, sessionUUID uuid.UUID) (*Session, error) {
	db = r.resolveDB(db)
	session := new(Session)
	err := db.NewSelect().
		Model(session).
		Relation("Rounds", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("seq ASC")
		}).
		Relation("Expenses", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("created_at ASC")
		}).
		Where("s.uuid = ?", sessionUUID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// ListSessionsByGroup retrieves a group's sessions, newest date first.
func (r *Impl) ListSessionsByGroup(ctx context.Context, db bun.IDB, groupUUID uuid.UUID) ([]Session, error) {
	db = r.resolveDB(db)
	var sessions []Session
	err := db.NewSelect().
		Model(&sessions).
		Relation("Rounds", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("seq ASC")
		}).
		Relation("Expenses").
		Where("s.group_uuid = ?", groupUUID).
		Order("date DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for group: %w", err)
	}
	return sessions, nil
}

// ListSessions retrieves every session with rounds and expenses
// loaded, oldest date first.
func (r *Impl) ListSessions(ctx context.Context, db bun.IDB) ([]Session, error) {
	db = r.resolveDB(db)
	var sessions []Session
	err := db.NewSelect().
		Model(&sessions).
		Relation("Rounds", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("seq ASC")
		}).
		Relation("Expenses").
		Order("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// UpdateChipCounts replaces a session's chip count vector.
func (r *Impl) UpdateChipCounts(ctx context.Context, db bun.IDB, sessionUUID uuid.UUID, counts []*int) error {
	db = r.resolveDB(db)
	data, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("failed to marshal chip counts: %w", err)
	}
	result, err := db.NewUpdate().
		Model((*Session)(nil)).
		Set("chip_counts = ?::jsonb", string(data)).
		Set("updated_at = ?", time.Now()).
		Where("uuid = ?", sessionUUID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update chip counts: %w", err)
	}
	return requireRows(result, ErrNotFound)
}

// UpdateStatus moves a session between active and settled.
func (r *Impl) UpdateStatus(ctx context.Context, db bun.IDB, sessionUUID uuid.UUID, status string) error {
	db = r.resolveDB(db)
	result, err := db.NewUpdate().
		Model((*Session)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("uuid = ?", sessionUUID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	return requireRows(result, ErrNotFound)
}

// CreateRound inserts a round.
func (r *Impl) CreateRound(ctx context.Context, db bun.IDB, round *Round) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(round).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create round: %w", err)
	}
	return nil
}

// UpdateRound replaces a round's scores and tobi.
func (r *Impl) UpdateRound(ctx context.Context, db bun.IDB, round *Round) error {
	db = r.resolveDB(db)
	scores, err := json.Marshal(round.Scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}
	q := db.NewUpdate().
		Model((*Round)(nil)).
		Set("scores = ?::jsonb", string(scores)).
		Set("updated_at = ?", time.Now()).
		Where("uuid = ?", round.UUID)
	if round.Tobi != nil {
		tobi, err := json.Marshal(round.Tobi)
		if err != nil {
			return fmt.Errorf("failed to marshal tobi: %w", err)
		}
		q = q.Set("tobi = ?::jsonb", string(tobi))
	} else {
		q = q.Set("tobi = NULL")
	}
	result, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update round: %w", err)
	}
	return requireRows(result, ErrRoundNotFound)
}

// DeleteRound removes a round.
func (r *Impl) DeleteRound(ctx context.Context, db bun.IDB, roundUUID uuid.UUID) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*Round)(nil)).
		Where("uuid = ?", roundUUID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete round: %w", err)
	}
	return requireRows(result, ErrRoundNotFound)
}

// CreateExpense inserts an expense.
func (r *Impl) CreateExpense(ctx context.Context, db bun.IDB, expense *Expense) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(expense).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense.
func (r *Impl) DeleteExpense(ctx context.Context, db bun.IDB, expenseUUID uuid.UUID) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*Expense)(nil)).
		Where("uuid = ?", expenseUUID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireRows(result, ErrExpenseNotFound)
}

func requireRows(result sql.Result, missing error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return missing
	}
	return nil
}

package groupdb

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

// ErrNotFound is returned when a group is not found.
var ErrNotFound = errors.New("group not found")

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new group repository.
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

// Create inserts a new group.
func (r *Impl) Create(ctx context.Context, db bun.IDB, group *Group) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(group).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

// GetByUUID retrieves a group by its UUID.
func (r *Impl) GetByUUID(ctx context.Context, db bun.IDB, groupUUID uuid.UUID) (*Group, error) {
	db = r.resolveDB(db)
	group := new(Group)
	err := db.NewSelect().
		Model(group).
		Where("uuid = ?", groupUUID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get group by UUID: %w", err)
	}
	return group, nil
}

// List retrieves all groups, most recently created first.
func (r *Impl) List(ctx context.Context, db bun.IDB) ([]Group, error) {
	db = r.resolveDB(db)
	var groups []Group
	err := db.NewSelect().
		Model(&groups).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// UpdateName updates a group's name.
func (r *Impl) UpdateName(ctx context.Context, db bun.IDB, groupUUID uuid.UUID, name string) error {
	db = r.resolveDB(db)
	result, err := db.NewUpdate().
		Model((*Group)(nil)).
		Set("name = ?", name).
		Set("updated_at = ?", time.Now()).
		Where("uuid = ?", groupUUID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update group name: %w", err)
	}
	return requireRows(result)
}

// UpdateMembers replaces a group's member list.
func (r *Impl) UpdateMembers(ctx context.Context, db bun.IDB, groupUUID uuid.UUID, members []string) error {
	db = r.resolveDB(db)
	data, err := json.Marshal(members)
	if err != nil {
		return fmt.Errorf("failed to marshal members: %w", err)
	}
	result, err := db.NewUpdate().
		Model((*Group)(nil)).
		Set("members = ?::jsonb", string(data)).
		Set("updated_at = ?", time.Now()).
		Where("uuid = ?", groupUUID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update group members: %w", err)
	}
	return requireRows(result)
}

func requireRows(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

package groupdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for group persistence.
type Repository interface {
	// Create inserts a new group.
	Create(ctx context.Context, db bun.IDB, group *Group) error

	// GetByUUID retrieves a group by its UUID.
	GetByUUID(ctx context.Context, db bun.IDB, groupUUID uuid.UUID) (*Group, error)

	// List retrieves all groups, most recently created first.
	List(ctx context.Context, db bun.IDB) ([]Group, error)

	// UpdateName updates a group's name.
	UpdateName(ctx context.Context, db bun.IDB, groupUUID uuid.UUID, name string) error

	// UpdateMembers replaces a group's member list.
	UpdateMembers(ctx context.Context, db bun.IDB, groupUUID uuid.UUID, members []string) error
}

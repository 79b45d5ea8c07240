package groupservice

import (
	"context"

	"github.com/google/uuid"

	groupdomain "github.com/Kanchan-Club/seisan-api/app/modules/group/domain"
)

// InviteInfo is a freshly minted invite link for a group.
type InviteInfo struct {
	Token string `json:"token"`
	Link  string `json:"link"`
}

// Service defines the group module's application operations.
type Service interface {
	// CreateGroup creates a group with an ordered member list.
	CreateGroup(ctx context.Context, name string, members []string) (*groupdomain.GroupInfo, error)

	// GetGroup retrieves one group.
	GetGroup(ctx context.Context, groupUUID uuid.UUID) (*groupdomain.GroupInfo, error)

	// ListGroups retrieves all groups, newest first.
	ListGroups(ctx context.Context) ([]groupdomain.GroupInfo, error)

	// RenameGroup changes a group's display name.
	RenameGroup(ctx context.Context, groupUUID uuid.UUID, name string) error

	// UpdateMembers replaces the ordered member list.
	UpdateMembers(ctx context.Context, groupUUID uuid.UUID, members []string) error

	// CreateInvite mints a signed join link for the group.
	CreateInvite(ctx context.Context, groupUUID uuid.UUID) (*InviteInfo, error)

	// JoinGroup redeems an invite token, appending memberName to the group.
	JoinGroup(ctx context.Context, token, memberName string) (*groupdomain.GroupInfo, error)
}

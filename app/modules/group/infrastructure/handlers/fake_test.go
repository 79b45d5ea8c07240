package grouphandlers

import (
	"context"

	"github.com/google/uuid"

	groupservice "github.com/Kanchan-Club/seisan-api/app/modules/group/application"
	groupdomain "github.com/Kanchan-Club/seisan-api/app/modules/group/domain"
)

// ------------------------
// Fake Group Service
// ------------------------

type FakeGroupService struct {
	trace []string

	CreateGroupFunc   func(ctx context.Context, name string, members []string) (*groupdomain.GroupInfo, error)
	GetGroupFunc      func(ctx context.Context, groupUUID uuid.UUID) (*groupdomain.GroupInfo, error)
	ListGroupsFunc    func(ctx context.Context) ([]groupdomain.GroupInfo, error)
	RenameGroupFunc   func(ctx context.Context, groupUUID uuid.UUID, name string) error
	UpdateMembersFunc func(ctx context.Context, groupUUID uuid.UUID, members []string) error
	CreateInviteFunc  func(ctx context.Context, groupUUID uuid.UUID) (*groupservice.InviteInfo, error)
	JoinGroupFunc     func(ctx context.Context, token, memberName string) (*groupdomain.GroupInfo, error)
}

func NewFakeGroupService() *FakeGroupService {
	return &FakeGroupService{trace: []string{}}
}

func (f *FakeGroupService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeGroupService) CreateGroup(ctx context.Context, name string, members []string) (*groupdomain.GroupInfo, error) {
	f.record("CreateGroup")
	if f.CreateGroupFunc != nil {
		return f.CreateGroupFunc(ctx, name, members)
	}
	return &groupdomain.GroupInfo{UUID: uuid.New(), Name: name, Members: members}, nil
}

func (f *FakeGroupService) GetGroup(ctx context.Context, groupUUID uuid.UUID) (*groupdomain.GroupInfo, error) {
	f.record("GetGroup")
	if f.GetGroupFunc != nil {
		return f.GetGroupFunc(ctx, groupUUID)
	}
	return &groupdomain.GroupInfo{UUID: groupUUID}, nil
}

func (f *FakeGroupService) ListGroups(ctx context.Context) ([]groupdomain.GroupInfo, error) {
	f.record("ListGroups")
	if f.ListGroupsFunc != nil {
		return f.ListGroupsFunc(ctx)
	}
	return nil, nil
}

func (f *FakeGroupService) RenameGroup(ctx context.Context, groupUUID uuid.UUID, name string) error {
	f.record("RenameGroup")
	if f.RenameGroupFunc != nil {
		return f.RenameGroupFunc(ctx, groupUUID, name)
	}
	return nil
}

func (f *FakeGroupService) UpdateMembers(ctx context.Context, groupUUID uuid.UUID, members []string) error {
	f.record("UpdateMembers")
	if f.UpdateMembersFunc != nil {
		return f.UpdateMembersFunc(ctx, groupUUID, members)
	}
	return nil
}

func (f *FakeGroupService) CreateInvite(ctx context.Context, groupUUID uuid.UUID) (*groupservice.InviteInfo, error) {
	f.record("CreateInvite")
	if f.CreateInviteFunc != nil {
		return f.CreateInviteFunc(ctx, groupUUID)
	}
	return &groupservice.InviteInfo{Token: "token", Link: "https://seisan.test/join?token=token"}, nil
}

func (f *FakeGroupService) JoinGroup(ctx context.Context, token, memberName string) (*groupdomain.GroupInfo, error) {
	f.record("JoinGroup")
	if f.JoinGroupFunc != nil {
		return f.JoinGroupFunc(ctx, token, memberName)
	}
	return &groupdomain.GroupInfo{UUID: uuid.New()}, nil
}

func (f *FakeGroupService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ groupservice.Service = (*FakeGroupService)(nil)

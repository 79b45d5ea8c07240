package groupservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kanchan-Club/seisan-api/app/eventbus"
	groupdomain "github.com/Kanchan-Club/seisan-api/app/modules/group/domain"
	groupinvites "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/invites"
	groupdb "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/repositories"
	"github.com/Kanchan-Club/seisan-api/app/observability"
)

// GroupService implements the Service interface.
type GroupService struct {
	repo     groupdb.Repository
	invites  *groupinvites.Provider
	eventBus eventbus.EventBus
	logger   *slog.Logger
	metrics  observability.ServiceMetrics
	tracer   trace.Tracer
	db       *bun.DB
}

// NewGroupService creates a new GroupService.
func NewGroupService(
	repo groupdb.Repository,
	invites *groupinvites.Provider,
	bus eventbus.EventBus,
	logger *slog.Logger,
	metrics observability.ServiceMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *GroupService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoopMetrics()
	}
	return &GroupService{
		repo:     repo,
		invites:  invites,
		eventBus: bus,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
	}
}

// CreateGroup creates a group with an ordered member list.
func (s *GroupService) CreateGroup(ctx context.Context, name string, members []string) (*groupdomain.GroupInfo, error) {
	return withTelemetry(s, ctx, "CreateGroup", func(ctx context.Context) (*groupdomain.GroupInfo, error) {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, ErrNameRequired
		}
		if err := validateMembers(members); err != nil {
			return nil, err
		}

		group := &groupdb.Group{
			UUID:    uuid.New(),
			Name:    name,
			Members: members,
		}
		if err := s.repo.Create(ctx, nil, group); err != nil {
			return nil, err
		}

		s.publishUpdated(ctx, group.UUID, groupdomain.ActionCreated)

		return toInfo(group), nil
	})
}

// GetGroup retrieves one group.
func (s *GroupService) GetGroup(ctx context.Context, groupUUID uuid.UUID) (*groupdomain.GroupInfo, error) {
	return withTelemetry(s, ctx, "GetGroup", func(ctx context.Context) (*groupdomain.GroupInfo, error) {
		group, err := s.repo.GetByUUID(ctx, nil, groupUUID)
		if err != nil {
			return nil, err
		}
		return toInfo(group), nil
	})
}

// ListGroups retrieves all groups, newest first.
func (s *GroupService) ListGroups(ctx context.Context) ([]groupdomain.GroupInfo, error) {
	return withTelemetry(s, ctx, "ListGroups", func(ctx context.Context) ([]groupdomain.GroupInfo, error) {
		groups, err := s.repo.List(ctx, nil)
		if err != nil {
			return nil, err
		}
		infos := make([]groupdomain.GroupInfo, len(groups))
		for i := range groups {
			infos[i] = *toInfo(&groups[i])
		}
		return infos, nil
	})
}

// RenameGroup changes a group's display name.
func (s *GroupService) RenameGroup(ctx context.Context, groupUUID uuid.UUID, name string) error {
	_, err := withTelemetry(s, ctx, "RenameGroup", func(ctx context.Context) (struct{}, error) {
		name = strings.TrimSpace(name)
		if name == "" {
			return struct{}{}, ErrNameRequired
		}
		if err := s.repo.UpdateName(ctx, nil, groupUUID, name); err != nil {
			return struct{}{}, err
		}
		s.publishUpdated(ctx, groupUUID, groupdomain.ActionRenamed)
		return struct{}{}, nil
	})
	return err
}

// UpdateMembers replaces the ordered member list.
func (s *GroupService) UpdateMembers(ctx context.Context, groupUUID uuid.UUID, members []string) error {
	_, err := withTelemetry(s, ctx, "UpdateMembers", func(ctx context.Context) (struct{}, error) {
		if err := validateMembers(members); err != nil {
			return struct{}{}, err
		}
		if err := s.repo.UpdateMembers(ctx, nil, groupUUID, members); err != nil {
			return struct{}{}, err
		}
		s.publishUpdated(ctx, groupUUID, groupdomain.ActionMembersChanged)
		return struct{}{}, nil
	})
	return err
}

// CreateInvite mints a signed join link for the group.
func (s *GroupService) CreateInvite(ctx context.Context, groupUUID uuid.UUID) (*InviteInfo, error) {
	return withTelemetry(s, ctx, "CreateInvite", func(ctx context.Context) (*InviteInfo, error) {
		// Confirm the group exists before handing out a link for it.
		if _, err := s.repo.GetByUUID(ctx, nil, groupUUID); err != nil {
			return nil, err
		}
		token, link, err := s.invites.CreateInvite(groupUUID)
		if err != nil {
			return nil, err
		}
		return &InviteInfo{Token: token, Link: link}, nil
	})
}

// JoinGroup redeems an invite token, appending memberName to the group.
// Joining is idempotent with respect to the name: a member who is already
// listed gets ErrMemberExists rather than a duplicate seat.
func (s *GroupService) JoinGroup(ctx context.Context, token, memberName string) (*groupdomain.GroupInfo, error) {
	return withTelemetry(s, ctx, "JoinGroup", func(ctx context.Context) (*groupdomain.GroupInfo, error) {
		memberName = strings.TrimSpace(memberName)
		if memberName == "" {
			return nil, ErrBlankMember
		}

		groupUUID, err := s.invites.ParseInvite(token)
		if err != nil {
			return nil, err
		}

		var joined *groupdb.Group
		err = s.runInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
			group, err := s.repo.GetByUUID(ctx, tx, groupUUID)
			if err != nil {
				return err
			}
			for _, m := range group.Members {
				if m == memberName {
					return ErrMemberExists
				}
			}
			group.Members = append(group.Members, memberName)
			if err := s.repo.UpdateMembers(ctx, tx, groupUUID, group.Members); err != nil {
				return err
			}
			joined = group
			return nil
		})
		if err != nil {
			return nil, err
		}

		s.publishUpdated(ctx, groupUUID, groupdomain.ActionMembersChanged)

		return toInfo(joined), nil
	})
}

func (s *GroupService) publishUpdated(ctx context.Context, groupUUID uuid.UUID, action string) {
	if s.eventBus == nil {
		return
	}
	payload := groupdomain.GroupUpdatedPayload{GroupUUID: groupUUID, Action: action}
	if err := s.eventBus.Publish(ctx, groupdomain.GroupUpdatedSubject, payload); err != nil {
		// Sync events are best-effort; the write already committed.
		s.logger.WarnContext(ctx, "Failed to publish group event",
			slog.String("group_uuid", groupUUID.String()),
			slog.String("action", action),
			slog.Any("error", err),
		)
	}
}

func (s *GroupService) runInTx(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

func validateMembers(members []string) error {
	if len(members) == 0 {
		return ErrNoMembers
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if strings.TrimSpace(m) == "" {
			return ErrBlankMember
		}
		if seen[m] {
			return ErrDuplicateMember
		}
		seen[m] = true
	}
	return nil
}

func toInfo(group *groupdb.Group) *groupdomain.GroupInfo {
	return &groupdomain.GroupInfo{
		UUID:      group.UUID,
		Name:      group.Name,
		Members:   group.Members,
		CreatedAt: group.CreatedAt,
	}
}

// withTelemetry wraps a service operation with tracing, metrics, and panic
// recovery.
func withTelemetry[T any](
	s *GroupService,
	ctx context.Context,
	operationName string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, "GroupService."+operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
		))
		defer span.End()
	}

	s.metrics.RecordOperationAttempt(ctx, operationName)
	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("operation", operationName),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			if span != nil {
				span.RecordError(err)
			}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Operation failed",
			slog.String("operation", operationName),
			slog.Any("error", err),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		if span != nil {
			span.RecordError(err)
		}
		return result, err
	}

	s.metrics.RecordOperationSuccess(ctx, operationName)
	return result, nil
}

package sessionservice

import (
	"context"

	"github.com/google/uuid"

	scoringdomain "github.com/Kanchan-Club/seisan-api/app/modules/scoring/domain"
	sessiondomain "github.com/Kanchan-Club/seisan-api/app/modules/session/domain"
)

// CreateSessionRequest carries everything needed to open a session.
// Date accepts RFC 3339, YYYY-MM-DD, or natural language; empty means
// now. Members snapshots the group's current member list when left nil.
type CreateSessionRequest struct {
	GroupUUID  uuid.UUID                `json:"group_uuid"`
	Date       string                   `json:"date"`
	Members    []string                 `json:"members"`
	Settings   sessiondomain.Settings   `json:"settings"`
	ChipConfig sessiondomain.ChipConfig `json:"chip_config"`
}

// ExpenseRequest is a new expense for a session.
type ExpenseRequest struct {
	Description string   `json:"description"`
	Amount      int      `json:"amount"`
	PaidBy      string   `json:"paid_by"`
	Kind        string   `json:"kind"`
	ForMembers  []string `json:"for_members"`
}

// Service defines the session module's application operations.
type Service interface {
	// CreateSession opens a session for a group.
	CreateSession(ctx context.Context, req CreateSessionRequest) (*sessiondomain.SessionInfo, error)

	// GetSession retrieves one session with rounds and expenses.
	GetSession(ctx context.Context, sessionUUID uuid.UUID) (*sessiondomain.SessionInfo, error)

	// ListSessionsByGroup retrieves a group's sessions, newest first.
	ListSessionsByGroup(ctx context.Context, groupUUID uuid.UUID) ([]sessiondomain.SessionInfo, error)

	// AddRound appends a round to an active session.
	AddRound(ctx context.Context, sessionUUID uuid.UUID, scores []*int, tobi *scoringdomain.TobiInfo) (*sessiondomain.RoundInfo, error)

	// UpdateRound replaces a round's scores and tobi.
	UpdateRound(ctx context.Context, sessionUUID, roundUUID uuid.UUID, scores []*int, tobi *scoringdomain.TobiInfo) error

	// DeleteRound removes a round from an active session.
	DeleteRound(ctx context.Context, sessionUUID, roundUUID uuid.UUID) error

	// UpdateChipCounts records end-of-night chip counts.
	UpdateChipCounts(ctx context.Context, sessionUUID uuid.UUID, counts []*int) error

	// AddExpense attaches an expense to an active session.
	AddExpense(ctx context.Context, sessionUUID uuid.UUID, req ExpenseRequest) (*sessiondomain.ExpenseInfo, error)

	// DeleteExpense removes an expense from an active session.
	DeleteExpense(ctx context.Context, sessionUUID, expenseUUID uuid.UUID) error

	// SettleSession marks a session settled and queues the settlement
	// notice for connected devices.
	SettleSession(ctx context.Context, sessionUUID uuid.UUID) error
}

// NoticeEnqueuer queues the background notification sent after a
// session settles. Implemented by the jobs package; nil disables it.
type NoticeEnqueuer interface {
	EnqueueSettlementNotice(ctx context.Context, sessionUUID uuid.UUID) error
}

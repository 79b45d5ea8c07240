package sessiondomain

import (
	"time"

	"github.com/google/uuid"

	scoringdomain "github.com/Kanchan-Club/seisan-api/app/modules/scoring/domain"
	settlementdomain "github.com/Kanchan-Club/seisan-api/app/modules/settlement/domain"
)

// Status of a session's lifecycle.
type Status string

const (
	StatusActive  Status = "active"
	StatusSettled Status = "settled"
)

// Settings are the scoring parameters fixed when a session is created.
// StartPoints, ReturnPoints, and Uma are in thousands of raw points
// (25 means a 25,000-point starting stack). Uma is indexed by rank-1
// and must cover every seat; that length rule is enforced when the
// session is written, so the scoring core can index it
// unconditionally. Tobi gates whether rounds may carry tobi markers;
// TobiPenalty only applies when it is on.
type Settings struct {
	Rate         int   `json:"rate"`
	Uma          []int `json:"uma"`
	StartPoints  int   `json:"start_points"`
	ReturnPoints int   `json:"return_points"`
	Tobi         bool  `json:"tobi"`
	TobiPenalty  int   `json:"tobi_penalty"`
}

// ChipConfig describes the optional side-bet chips for a session.
type ChipConfig struct {
	Enabled      bool `json:"enabled"`
	StartChips   int  `json:"start_chips"`
	PricePerChip int  `json:"price_per_chip"`
}

// RoundInfo is one hanchan's raw result. Scores is indexed by seat; a
// nil entry is a seat that sat the round out.
type RoundInfo struct {
	UUID   uuid.UUID               `json:"uuid"`
	Seq    int                     `json:"seq"`
	Scores []*int                  `json:"scores"`
	Tobi   *scoringdomain.TobiInfo `json:"tobi,omitempty"`
}

// ExpenseInfo is a shared or individual cost attached to a session.
type ExpenseInfo struct {
	UUID        uuid.UUID                    `json:"uuid"`
	Description string                       `json:"description"`
	Amount      int                          `json:"amount"`
	PaidBy      string                       `json:"paid_by"`
	Kind        settlementdomain.ExpenseKind `json:"kind"`
	ForMembers  []string                     `json:"for_members,omitempty"`
}

// SessionInfo is the full view of a session returned to callers.
// Members is a snapshot of the group's member list at creation time;
// every per-seat vector (scores, chip counts, balances) is indexed by
// position in it.
type SessionInfo struct {
	UUID       uuid.UUID     `json:"uuid"`
	GroupUUID  uuid.UUID     `json:"group_uuid"`
	Date       time.Time     `json:"date"`
	Members    []string      `json:"members"`
	Settings   Settings      `json:"settings"`
	ChipConfig ChipConfig    `json:"chip_config"`
	ChipCounts []*int        `json:"chip_counts"`
	Status     Status        `json:"status"`
	Rounds     []RoundInfo   `json:"rounds"`
	Expenses   []ExpenseInfo `json:"expenses"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Event subjects published by the session module.
const (
	SessionUpdatedSubject = "session.updated.v1"
)

// Actions carried in SessionUpdatedPayload.
const (
	ActionCreated        = "created"
	ActionRoundAdded     = "round_added"
	ActionRoundUpdated   = "round_updated"
	ActionRoundDeleted   = "round_deleted"
	ActionChipsUpdated   = "chips_updated"
	ActionExpenseAdded   = "expense_added"
	ActionExpenseDeleted = "expense_deleted"
	ActionSettled        = "settled"
)

// SessionUpdatedPayload is published after every successful session
// write so other devices can refresh.
type SessionUpdatedPayload struct {
	SessionUUID uuid.UUID `json:"session_uuid"`
	GroupUUID   uuid.UUID `json:"group_uuid"`
	Action      string    `json:"action"`
}

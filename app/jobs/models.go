package jobs

import (
	"time"

	"github.com/google/uuid"
)

// SettlementNoticeJob is enqueued when a session is marked settled. The
// worker renders the final ledger and broadcasts it to the group.
type SettlementNoticeJob struct {
	SessionUUID uuid.UUID `json:"session_uuid"`
}

// Kind returns the job type identifier for River.
func (SettlementNoticeJob) Kind() string { return "settlement_notice" }

// SettlementNoticePayload is what the worker publishes on the group's
// sync subject once the ledger is rendered.
type SettlementNoticePayload struct {
	SessionUUID uuid.UUID `json:"session_uuid"`
	GroupUUID   uuid.UUID `json:"group_uuid"`
	Text        string    `json:"text"`
	SettledAt   time.Time `json:"settled_at"`
}

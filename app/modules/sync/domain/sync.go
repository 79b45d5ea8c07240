package syncdomain

import (
	"time"

	"github.com/google/uuid"
)

// Scope identifies what kind of record a change notice refers to.
type Scope string

const (
	ScopeGroup   Scope = "group"
	ScopeSession Scope = "session"
)

// ChangeNotice is the compact payload broadcast to a group's devices
// when something in the group changes. Devices refetch what they need;
// the notice deliberately carries no record data.
type ChangeNotice struct {
	Scope       Scope      `json:"scope"`
	GroupUUID   uuid.UUID  `json:"group_uuid"`
	SessionUUID *uuid.UUID `json:"session_uuid,omitempty"`
	Action      string     `json:"action"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// GroupSubject returns the per-group subject devices subscribe to.
func GroupSubject(groupUUID uuid.UUID) string {
	return "sync.group." + groupUUID.String()
}

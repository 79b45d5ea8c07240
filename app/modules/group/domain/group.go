package groupdomain

import (
	"time"

	"github.com/google/uuid"
)

// GroupInfo is the view of a group returned to callers. Member order is
// load-bearing: every balance vector downstream is indexed by position in
// Members.
type GroupInfo struct {
	UUID      uuid.UUID `json:"uuid"`
	Name      string    `json:"name"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// Event subjects published by the group module.
const (
	GroupUpdatedSubject = "group.updated.v1"
)

// Actions carried in GroupUpdatedPayload.
const (
	ActionCreated        = "created"
	ActionRenamed        = "renamed"
	ActionMembersChanged = "members_changed"
)

// GroupUpdatedPayload is published after every successful group write so
// other devices can refresh.
type GroupUpdatedPayload struct {
	GroupUUID uuid.UUID `json:"group_uuid"`
	Action    string    `json:"action"`
}

package groupservice

import "errors"

// Validation errors surfaced to the HTTP layer.
var (
	ErrNameRequired    = errors.New("group name is required")
	ErrNoMembers       = errors.New("group needs at least one member")
	ErrDuplicateMember = errors.New("member names must be unique")
	ErrMemberExists    = errors.New("member already in group")
	ErrBlankMember     = errors.New("member name must not be blank")
)

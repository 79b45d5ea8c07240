package sessionservice

import "errors"

// Validation errors surfaced to the HTTP layer. All boundary checks
// happen here so the scoring core can stay error-free.
var (
	ErrSessionSettled   = errors.New("session is already settled")
	ErrBadDate          = errors.New("could not parse session date")
	ErrMemberCount      = errors.New("sessions need four or five seats")
	ErrUmaTooShort      = errors.New("uma table must cover every seat")
	ErrScoresLength     = errors.New("score vector length must match seat count")
	ErrNoActiveScores   = errors.New("round needs at least one active score")
	ErrTobiInvalid      = errors.New("tobi seats must be distinct active seats")
	ErrTobiDisabled     = errors.New("tobi is not enabled for this session")
	ErrChipsDisabled    = errors.New("chips are not enabled for this session")
	ErrChipCountsLength = errors.New("chip count vector length must match seat count")
	ErrExpenseAmount    = errors.New("expense amount must be positive")
	ErrExpenseKind      = errors.New("expense kind must be shared or individual")
	ErrExpenseNoTargets = errors.New("individual expenses need at least one target member")
	ErrUnknownMember    = errors.New("name is not a member of this session")
	ErrDescriptionBlank = errors.New("expense description must not be blank")
)

package sessiondb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	scoringdomain "github.com/Kanchan-Club/seisan-api/app/modules/scoring/domain"
	sessiondomain "github.com/Kanchan-Club/seisan-api/app/modules/session/domain"
)

// Session is one evening of play for a group. Members snapshots the
// group member list at creation; seat vectors are indexed by position
// in it. ChipCounts entries are nil until a count is recorded.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	UUID       uuid.UUID                `bun:"uuid,pk,type:uuid"`
	GroupUUID  uuid.UUID                `bun:"group_uuid,notnull,type:uuid"`
	Date       time.Time                `bun:"date,notnull"`
	Members    []string                 `bun:"members,notnull,type:jsonb"`
	Settings   sessiondomain.Settings   `bun:"settings,notnull,type:jsonb"`
	ChipConfig sessiondomain.ChipConfig `bun:"chip_config,notnull,type:jsonb"`
	ChipCounts []*int                   `bun:"chip_counts,type:jsonb"`
	Status     string                   `bun:"status,notnull,default:'active'"`
	CreatedAt  time.Time                `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time                `bun:"updated_at,nullzero,notnull,default:current_timestamp"`

	Rounds   []*Round   `bun:"rel:has-many,join:uuid=session_uuid"`
	Expenses []*Expense `bun:"rel:has-many,join:uuid=session_uuid"`
}

// Round is one hanchan's raw scores, in seat order. A JSON null in
// Scores marks a seat that sat out.
type Round struct {
	bun.BaseModel `bun:"table:rounds,alias:r"`

	UUID        uuid.UUID               `bun:"uuid,pk,type:uuid"`
	SessionUUID uuid.UUID               `bun:"session_uuid,notnull,type:uuid"`
	Seq         int                     `bun:"seq,notnull"`
	Scores      []*int                  `bun:"scores,notnull,type:jsonb"`
	Tobi        *scoringdomain.TobiInfo `bun:"tobi,type:jsonb"`
	CreatedAt   time.Time               `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time               `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Expense is a cost attached to a session. ForMembers is only set for
// individual expenses.
type Expense struct {
	bun.BaseModel `bun:"table:expenses,alias:e"`

	UUID        uuid.UUID `bun:"uuid,pk,type:uuid"`
	SessionUUID uuid.UUID `bun:"session_uuid,notnull,type:uuid"`
	Description string    `bun:"description,notnull,type:varchar(200)"`
	Amount      int       `bun:"amount,notnull"`
	PaidBy      string    `bun:"paid_by,notnull,type:varchar(100)"`
	Kind        string    `bun:"kind,notnull,type:varchar(20)"`
	ForMembers  []string  `bun:"for_members,type:jsonb"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

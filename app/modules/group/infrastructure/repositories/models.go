package groupdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Group is a standing circle of players. Members is stored as a JSONB
// array because member order is significant: seat indices, balances, and
// settlement output all key off position in this slice.
type Group struct {
	bun.BaseModel `bun:"table:groups,alias:g"`

	UUID      uuid.UUID `bun:"uuid,pk,type:uuid"`
	Name      string    `bun:"name,notnull,type:varchar(100)"`
	Members   []string  `bun:"members,notnull,type:jsonb"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

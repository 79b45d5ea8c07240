package settlementservice

import (
	"context"

	"github.com/google/uuid"

	settlementdomain "github.com/Kanchan-Club/seisan-api/app/modules/settlement/domain"
)

// Breakdown is the full settlement picture for one session. All balance
// vectors are indexed by position in Members.
type Breakdown struct {
	SessionUUID     uuid.UUID                     `json:"session_uuid"`
	Members         []string                      `json:"members"`
	MahjongPoints   []int                         `json:"mahjong_points"`
	MahjongBalances []int                         `json:"mahjong_balances"`
	ChipBalances    []int                         `json:"chip_balances"`
	ExpenseBalances []int                         `json:"expense_balances"`
	FinalBalances   []int                         `json:"final_balances"`
	Settlements     []settlementdomain.Settlement `json:"settlements"`
	ChipEnabled     bool                          `json:"chip_enabled"`
}

// Service defines the settlement module's application operations.
type Service interface {
	// GetBreakdown computes the session's balances and transfer list.
	GetBreakdown(ctx context.Context, sessionUUID uuid.UUID) (*Breakdown, error)

	// RenderShareText renders the settlement as the plain-text summary
	// players paste into their group chat.
	RenderShareText(ctx context.Context, sessionUUID uuid.UUID) (string, error)

	// ExportWorkbook renders the session's scores and settlement as an
	// xlsx workbook.
	ExportWorkbook(ctx context.Context, sessionUUID uuid.UUID) ([]byte, error)
}

package statsservice

import (
	"context"

	statsdomain "github.com/Kanchan-Club/seisan-api/app/modules/stats/domain"
)

// Service defines the stats module's application operations. All
// operations are computed over every stored session a member appears
// in.
type Service interface {
	// Overview computes a member's lifetime record.
	Overview(ctx context.Context, member string) (*statsdomain.OverviewStats, error)

	// Monthly computes a member's per-month balances, newest first.
	Monthly(ctx context.Context, member string) ([]statsdomain.MonthlyStat, error)

	// Opponents computes a member's record against each opponent they
	// have shared a table with.
	Opponents(ctx context.Context, member string) ([]statsdomain.OpponentStat, error)

	// Groups computes a member's standing within each of their groups.
	Groups(ctx context.Context, member string) ([]statsdomain.GroupStat, error)

	// MemberNames lists every name appearing in any session, sorted.
	MemberNames(ctx context.Context) ([]string, error)

	// TrendChart renders a member's cumulative balance over time as a
	// PNG line chart.
	TrendChart(ctx context.Context, member string) ([]byte, error)
}

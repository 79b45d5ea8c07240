package statshandlers

import (
	"context"

	statsservice "github.com/Kanchan-Club/seisan-api/app/modules/stats/application"
	statsdomain "github.com/Kanchan-Club/seisan-api/app/modules/stats/domain"
)

// FakeStatsService records calls and delegates to optional Func fields.
type FakeStatsService struct {
	Calls []string

	OverviewFunc    func(ctx context.Context, member string) (*statsdomain.OverviewStats, error)
	MonthlyFunc     func(ctx context.Context, member string) ([]statsdomain.MonthlyStat, error)
	OpponentsFunc   func(ctx context.Context, member string) ([]statsdomain.OpponentStat, error)
	GroupsFunc      func(ctx context.Context, member string) ([]statsdomain.GroupStat, error)
	MemberNamesFunc func(ctx context.Context) ([]string, error)
	TrendChartFunc  func(ctx context.Context, member string) ([]byte, error)
}

func (f *FakeStatsService) Overview(ctx context.Context, member string) (*statsdomain.OverviewStats, error) {
	f.Calls = append(f.Calls, "Overview:"+member)
	if f.OverviewFunc != nil {
		return f.OverviewFunc(ctx, member)
	}
	return &statsdomain.OverviewStats{}, nil
}

func (f *FakeStatsService) Monthly(ctx context.Context, member string) ([]statsdomain.MonthlyStat, error) {
	f.Calls = append(f.Calls, "Monthly:"+member)
	if f.MonthlyFunc != nil {
		return f.MonthlyFunc(ctx, member)
	}
	return []statsdomain.MonthlyStat{}, nil
}

func (f *FakeStatsService) Opponents(ctx context.Context, member string) ([]statsdomain.OpponentStat, error) {
	f.Calls = append(f.Calls, "Opponents:"+member)
	if f.OpponentsFunc != nil {
		return f.OpponentsFunc(ctx, member)
	}
	return []statsdomain.OpponentStat{}, nil
}

func (f *FakeStatsService) Groups(ctx context.Context, member string) ([]statsdomain.GroupStat, error) {
	f.Calls = append(f.Calls, "Groups:"+member)
	if f.GroupsFunc != nil {
		return f.GroupsFunc(ctx, member)
	}
	return []statsdomain.GroupStat{}, nil
}

func (f *FakeStatsService) MemberNames(ctx context.Context) ([]string, error) {
	f.Calls = append(f.Calls, "MemberNames")
	if f.MemberNamesFunc != nil {
		return f.MemberNamesFunc(ctx)
	}
	return []string{}, nil
}

func (f *FakeStatsService) TrendChart(ctx context.Context, member string) ([]byte, error) {
	f.Calls = append(f.Calls, "TrendChart:"+member)
	if f.TrendChartFunc != nil {
		return f.TrendChartFunc(ctx, member)
	}
	return []byte("\x89PNG"), nil
}

var _ statsservice.Service = (*FakeStatsService)(nil)

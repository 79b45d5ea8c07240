package statsservice

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	groupdb "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/repositories"
	scoringdomain "github.com/Kanchan-Club/seisan-api/app/modules/scoring/domain"
	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
	settlementdomain "github.com/Kanchan-Club/seisan-api/app/modules/settlement/domain"
	statsdomain "github.com/Kanchan-Club/seisan-api/app/modules/stats/domain"
	"github.com/Kanchan-Club/seisan-api/app/observability"
)

// StatsService implements the Service interface. Stats are recomputed
// from stored sessions on every request; session counts in a weekly
// mahjong club stay small enough that caching would be premature.
type StatsService struct {
	sessions sessiondb.Repository
	groups   groupdb.Repository
	logger   *slog.Logger
	metrics  observability.ServiceMetrics
	tracer   trace.Tracer
}

// NewStatsService creates a new StatsService.
func NewStatsService(
	sessions sessiondb.Repository,
	groups groupdb.Repository,
	logger *slog.Logger,
	metrics observability.ServiceMetrics,
	tracer trace.Tracer,
) *StatsService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoopMetrics()
	}
	return &StatsService{
		sessions: sessions,
		groups:   groups,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
	}
}

// Overview computes a member's lifetime record.
func (s *StatsService) Overview(ctx context.Context, member string) (*statsdomain.OverviewStats, error) {
	return withTelemetry(s, ctx, "Overview", func(ctx context.Context) (*statsdomain.OverviewStats, error) {
		sessions, err := s.memberSessions(ctx, member)
		if err != nil {
			return nil, err
		}

		stats := &statsdomain.OverviewStats{TotalSessions: len(sessions)}
		rankSum, rankCount := 0, 0

		for i := range sessions {
			session := &sessions[i]
			myIdx := memberIndex(session.Members, member)
			balances := sessionFinalBalances(session)
			stats.TotalBalance += balances[myIdx]

			for _, round := range session.Rounds {
				ranks := scoringdomain.RoundRanks(round.Scores)
				if myRank := ranks[myIdx]; myRank != nil {
					stats.TotalRounds++
					rankSum += *myRank
					rankCount++
					switch *myRank {
					case 1:
						stats.FirstPlace++
					case 2:
						stats.SecondPlace++
					case 3:
						stats.ThirdPlace++
					case 4:
						stats.FourthPlace++
					}
				}
				if round.Tobi != nil && round.Tobi.Victim == myIdx {
					stats.Tobi++
				}
			}
		}

		if rankCount > 0 {
			stats.AvgRank = float64(rankSum) / float64(rankCount)
			stats.TobiRate = math.Round(float64(stats.Tobi)/float64(rankCount)*1000) / 10
		}
		return stats, nil
	})
}

// Monthly computes a member's per-month balances, newest first.
func (s *StatsService) Monthly(ctx context.Context, member string) ([]statsdomain.MonthlyStat, error) {
	return withTelemetry(s, ctx, "Monthly", func(ctx context.Context) ([]statsdomain.MonthlyStat, error) {
		sessions, err := s.memberSessions(ctx, member)
		if err != nil {
			return nil, err
		}

		byMonth := make(map[string]*statsdomain.MonthlyStat)
		for i := range sessions {
			session := &sessions[i]
			myIdx := memberIndex(session.Members, member)
			balances := sessionFinalBalances(session)

			month := session.Date.Format("2006/01")
			entry, ok := byMonth[month]
			if !ok {
				entry = &statsdomain.MonthlyStat{Month: month}
				byMonth[month] = entry
			}
			entry.Sessions++
			entry.Balance += balances[myIdx]
		}

		months := make([]statsdomain.MonthlyStat, 0, len(byMonth))
		for _, entry := range byMonth {
			months = append(months, *entry)
		}
		sort.Slice(months, func(i, j int) bool { return months[i].Month > months[j].Month })
		return months, nil
	})
}

// Opponents computes a member's record against each opponent they have
// shared a table with, in first-met order.
func (s *StatsService) Opponents(ctx context.Context, member string) ([]statsdomain.OpponentStat, error) {
	return withTelemetry(s, ctx, "Opponents", func(ctx context.Context) ([]statsdomain.OpponentStat, error) {
		sessions, err := s.memberSessions(ctx, member)
		if err != nil {
			return nil, err
		}

		type acc struct {
			sessions  int
			balance   int
			rankSum   int
			rankCount int
		}
		byName := make(map[string]*acc)
		var order []string

		for i := range sessions {
			session := &sessions[i]
			myIdx := memberIndex(session.Members, member)
			balances := sessionFinalBalances(session)
			myBalance := balances[myIdx]

			myRankSum, myRankCount := 0, 0
			for _, round := range session.Rounds {
				ranks := scoringdomain.RoundRanks(round.Scores)
				if myRank := ranks[myIdx]; myRank != nil {
					myRankSum += *myRank
					myRankCount++
				}
			}

			for _, opponent := range session.Members {
				if opponent == member {
					continue
				}
				entry, ok := byName[opponent]
				if !ok {
					entry = &acc{}
					byName[opponent] = entry
					order = append(order, opponent)
				}
				entry.sessions++
				entry.balance += myBalance
				entry.rankSum += myRankSum
				entry.rankCount += myRankCount
			}
		}

		stats := make([]statsdomain.OpponentStat, 0, len(order))
		for _, name := range order {
			entry := byName[name]
			stat := statsdomain.OpponentStat{
				Name:     name,
				Sessions: entry.sessions,
				Balance:  entry.balance,
			}
			if entry.rankCount > 0 {
				stat.AvgRank = float64(entry.rankSum) / float64(entry.rankCount)
			}
			stats = append(stats, stat)
		}
		return stats, nil
	})
}

// Groups computes a member's standing within each of their groups.
func (s *StatsService) Groups(ctx context.Context, member string) ([]statsdomain.GroupStat, error) {
	return withTelemetry(s, ctx, "Groups", func(ctx context.Context) ([]statsdomain.GroupStat, error) {
		sessions, err := s.memberSessions(ctx, member)
		if err != nil {
			return nil, err
		}

		groups, err := s.groups.List(ctx, nil)
		if err != nil {
			return nil, err
		}
		groupNames := make(map[string]string, len(groups))
		for _, g := range groups {
			groupNames[g.UUID.String()] = g.Name
		}

		byGroup := make(map[string][]*sessiondb.Session)
		var order []string
		for i := range sessions {
			key := sessions[i].GroupUUID.String()
			if _, ok := byGroup[key]; !ok {
				order = append(order, key)
			}
			byGroup[key] = append(byGroup[key], &sessions[i])
		}

		stats := make([]statsdomain.GroupStat, 0, len(order))
		for _, key := range order {
			name, ok := groupNames[key]
			if !ok {
				name = "不明なグループ"
			}
			stats = append(stats, buildGroupStat(name, byGroup[key], member))
		}
		return stats, nil
	})
}

// MemberNames lists every name appearing in any session, sorted.
func (s *StatsService) MemberNames(ctx context.Context) ([]string, error) {
	return withTelemetry(s, ctx, "MemberNames", func(ctx context.Context) ([]string, error) {
		sessions, err := s.sessions.ListSessions(ctx, nil)
		if err != nil {
			return nil, err
		}

		seen := make(map[string]bool)
		var names []string
		for i := range sessions {
			for _, m := range sessions[i].Members {
				if !seen[m] {
					seen[m] = true
					names = append(names, m)
				}
			}
		}
		sort.Strings(names)
		return names, nil
	})
}

// memberSessions loads every session the member appears in, oldest
// first.
func (s *StatsService) memberSessions(ctx context.Context, member string) ([]sessiondb.Session, error) {
	sessions, err := s.sessions.ListSessions(ctx, nil)
	if err != nil {
		return nil, err
	}
	mine := sessions[:0:0]
	for i := range sessions {
		if memberIndex(sessions[i].Members, member) >= 0 {
			mine = append(mine, sessions[i])
		}
	}
	return mine, nil
}

func buildGroupStat(name string, sessions []*sessiondb.Session, member string) statsdomain.GroupStat {
	stat := statsdomain.GroupStat{Name: name, Sessions: len(sessions)}

	type acc struct {
		balance    int
		rankSum    int
		rankCount  int
		rankCounts [4]int
	}
	byMember := make(map[string]*acc)
	var order []string
	track := func(m string) *acc {
		entry, ok := byMember[m]
		if !ok {
			entry = &acc{}
			byMember[m] = entry
			order = append(order, m)
		}
		return entry
	}

	myRankSum, myRankCount := 0, 0

	for _, session := range sessions {
		myIdx := memberIndex(session.Members, member)
		balances := sessionFinalBalances(session)
		stat.Balance += balances[myIdx]

		history := statsdomain.SessionResult{
			Date:    fmt.Sprintf("%d/%d", int(session.Date.Month()), session.Date.Day()),
			Members: make([]statsdomain.MemberBalance, len(session.Members)),
		}
		for i, m := range session.Members {
			history.Members[i] = statsdomain.MemberBalance{Name: m, Balance: balances[i]}
			track(m).balance += balances[i]
		}
		stat.SessionHistory = append(stat.SessionHistory, history)

		for _, round := range session.Rounds {
			ranks := scoringdomain.RoundRanks(round.Scores)
			for i, m := range session.Members {
				rank := ranks[i]
				if rank == nil {
					continue
				}
				entry := track(m)
				entry.rankSum += *rank
				entry.rankCount++
				if *rank >= 1 && *rank <= 4 {
					entry.rankCounts[*rank-1]++
				}
				if i == myIdx {
					myRankSum += *rank
					myRankCount++
					if *rank >= 1 && *rank <= 4 {
						stat.RankCounts[*rank-1]++
					}
				}
			}
		}
	}

	if myRankCount > 0 {
		stat.AvgRank = float64(myRankSum) / float64(myRankCount)
	}

	stat.MemberRanking = make([]statsdomain.MemberStat, 0, len(order))
	for _, m := range order {
		entry := byMember[m]
		ms := statsdomain.MemberStat{
			Name:       m,
			Balance:    entry.balance,
			RankCounts: entry.rankCounts,
		}
		if entry.rankCount > 0 {
			ms.AvgRank = float64(entry.rankSum) / float64(entry.rankCount)
		}
		stat.MemberRanking = append(stat.MemberRanking, ms)
	}
	sort.SliceStable(stat.MemberRanking, func(i, j int) bool {
		return stat.MemberRanking[i].Balance > stat.MemberRanking[j].Balance
	})

	return stat
}

// sessionFinalBalances composes one session's mahjong, chip, and
// expense balances, indexed by seat.
func sessionFinalBalances(session *sessiondb.Session) []int {
	members := session.Members
	settings := session.Settings

	rounds := make([]scoringdomain.RoundData, len(session.Rounds))
	for i, r := range session.Rounds {
		rounds[i] = scoringdomain.RoundData{Scores: r.Scores, Tobi: r.Tobi}
	}
	points := scoringdomain.CalculateTotals(rounds, settings.ReturnPoints, settings.Uma, settings.TobiPenalty, settings.StartPoints)
	if points == nil {
		points = make([]int, len(members))
	}
	mahjong := scoringdomain.CalculateMoney(points, settings.Rate)

	chips := make([]int, len(members))
	if session.ChipConfig.Enabled {
		counts := make([]int, len(members))
		for i := range members {
			counts[i] = session.ChipConfig.StartChips
			if i < len(session.ChipCounts) && session.ChipCounts[i] != nil {
				counts[i] = *session.ChipCounts[i]
			}
		}
		chips = settlementdomain.ChipBalances(counts, session.ChipConfig.StartChips, session.ChipConfig.PricePerChip)
	}

	expenses := make([]settlementdomain.Expense, len(session.Expenses))
	for i, e := range session.Expenses {
		expenses[i] = settlementdomain.Expense{
			Description: e.Description,
			Amount:      e.Amount,
			PaidBy:      e.PaidBy,
			Kind:        settlementdomain.ExpenseKind(e.Kind),
			ForMembers:  e.ForMembers,
		}
	}
	expenseBalances := settlementdomain.ExpenseBalances(members, expenses)

	final := make([]int, len(members))
	for i := range members {
		final[i] = mahjong[i] + chips[i] + expenseBalances[i]
	}
	return final
}

func memberIndex(members []string, name string) int {
	for i, m := range members {
		if m == name {
			return i
		}
	}
	return -1
}

// withTelemetry wraps a service operation with tracing, metrics, and panic
// recovery.
func withTelemetry[T any](
	s *StatsService,
	ctx context.Context,
	operationName string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, "StatsService."+operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
		))
		defer span.End()
	}

	s.metrics.RecordOperationAttempt(ctx, operationName)
	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("operation", operationName),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			if span != nil {
				span.RecordError(err)
			}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Operation failed",
			slog.String("operation", operationName),
			slog.Any("error", err),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		if span != nil {
			span.RecordError(err)
		}
		return result, err
	}

	s.metrics.RecordOperationSuccess(ctx, operationName)
	return result, nil
}

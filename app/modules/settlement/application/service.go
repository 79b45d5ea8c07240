package settlementservice

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	scoringdomain "github.com/Kanchan-Club/seisan-api/app/modules/scoring/domain"
	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
	settlementdomain "github.com/Kanchan-Club/seisan-api/app/modules/settlement/domain"
	"github.com/Kanchan-Club/seisan-api/app/observability"
)

// SettlementService implements the Service interface. It is a read-only
// view over the session repository; all arithmetic lives in the domain
// packages.
type SettlementService struct {
	sessions sessiondb.Repository
	logger   *slog.Logger
	metrics  observability.ServiceMetrics
	tracer   trace.Tracer
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(
	sessions sessiondb.Repository,
	logger *slog.Logger,
	metrics observability.ServiceMetrics,
	tracer trace.Tracer,
) *SettlementService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoopMetrics()
	}
	return &SettlementService{
		sessions: sessions,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
	}
}

// GetBreakdown computes the session's balances and transfer list.
func (s *SettlementService) GetBreakdown(ctx context.Context, sessionUUID uuid.UUID) (*Breakdown, error) {
	return withTelemetry(s, ctx, "GetBreakdown", func(ctx context.Context) (*Breakdown, error) {
		session, err := s.sessions.GetSession(ctx, nil, sessionUUID)
		if err != nil {
			return nil, err
		}
		return computeBreakdown(session), nil
	})
}

// RenderShareText renders the settlement as the plain-text summary
// players paste into their group chat.
func (s *SettlementService) RenderShareText(ctx context.Context, sessionUUID uuid.UUID) (string, error) {
	return withTelemetry(s, ctx, "RenderShareText", func(ctx context.Context) (string, error) {
		session, err := s.sessions.GetSession(ctx, nil, sessionUUID)
		if err != nil {
			return "", err
		}
		return ShareText(session), nil
	})
}

// ShareText renders the settlement summary for an already-loaded
// session, for callers that hold the row and do not need a second
// repository read.
func ShareText(session *sessiondb.Session) string {
	return renderShareText(session.Date, session.Members, computeBreakdown(session))
}

// ExportWorkbook renders the session's scores and settlement as an xlsx
// workbook.
func (s *SettlementService) ExportWorkbook(ctx context.Context, sessionUUID uuid.UUID) ([]byte, error) {
	return withTelemetry(s, ctx, "ExportWorkbook", func(ctx context.Context) ([]byte, error) {
		session, err := s.sessions.GetSession(ctx, nil, sessionUUID)
		if err != nil {
			return nil, err
		}
		return buildWorkbook(session, computeBreakdown(session))
	})
}

// computeBreakdown runs the domain calculators over one loaded session.
func computeBreakdown(session *sessiondb.Session) *Breakdown {
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
			// A seat with no recorded count is flat at the start stack.
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

	return &Breakdown{
		SessionUUID:     session.UUID,
		Members:         members,
		MahjongPoints:   points,
		MahjongBalances: mahjong,
		ChipBalances:    chips,
		ExpenseBalances: expenseBalances,
		FinalBalances:   final,
		Settlements:     settlementdomain.Settlements(members, final),
		ChipEnabled:     session.ChipConfig.Enabled,
	}
}

// renderShareText mirrors the summary format the club already pastes
// into LINE, so switching devices does not change the message.
func renderShareText(date time.Time, members []string, b *Breakdown) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s 精算\n\n", date.Format("2006/01/02"))

	sb.WriteString("【最終精算】\n")
	if len(b.Settlements) > 0 {
		for _, s := range b.Settlements {
			fmt.Fprintf(&sb, "%s → %s  %spt\n", s.From, s.To, formatAmount(s.Amount))
		}
	} else {
		sb.WriteString("精算なし\n")
	}

	sb.WriteString("\n【内訳】\n")
	for i, member := range members {
		fmt.Fprintf(&sb, "%s: %spt", member, formatSigned(b.FinalBalances[i]))
		if b.ChipEnabled {
			fmt.Fprintf(&sb, " (麻雀%s / チップ%s / 費用%s)",
				formatSigned(b.MahjongBalances[i]),
				formatSigned(b.ChipBalances[i]),
				formatSigned(b.ExpenseBalances[i]),
			)
		} else {
			fmt.Fprintf(&sb, " (麻雀%s / 費用%s)",
				formatSigned(b.MahjongBalances[i]),
				formatSigned(b.ExpenseBalances[i]),
			)
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

// formatAmount groups thousands with commas.
func formatAmount(n int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.Itoa(n)
	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
		if len(digits) > lead {
			sb.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		sb.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			sb.WriteByte(',')
		}
	}
	return sb.String()
}

func formatSigned(n int) string {
	if n >= 0 {
		return "+" + formatAmount(n)
	}
	return formatAmount(n)
}

const (
	scoresSheet     = "Scores"
	settlementSheet = "Settlement"
)

func buildWorkbook(session *sessiondb.Session, b *Breakdown) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", scoresSheet)
	if _, err := f.NewSheet(settlementSheet); err != nil {
		return nil, fmt.Errorf("failed to create settlement sheet: %w", err)
	}

	setRow := func(sheet string, row int, values ...any) error {
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		return nil
	}

	// Scores sheet: one row per round with adjusted per-seat results.
	header := make([]any, 0, len(session.Members)+1)
	header = append(header, "Round")
	for _, m := range session.Members {
		header = append(header, m)
	}
	if err := setRow(scoresSheet, 1, header...); err != nil {
		return nil, fmt.Errorf("failed to write scores header: %w", err)
	}

	settings := session.Settings
	row := 2
	for _, r := range session.Rounds {
		scores := scoringdomain.CalculateRoundScores(r.Scores, settings.ReturnPoints, settings.Uma, settings.TobiPenalty, r.Tobi, settings.StartPoints)
		values := make([]any, 0, len(scores)+1)
		values = append(values, r.Seq)
		for _, sc := range scores {
			values = append(values, sc)
		}
		if err := setRow(scoresSheet, row, values...); err != nil {
			return nil, fmt.Errorf("failed to write round row: %w", err)
		}
		row++
	}
	totals := make([]any, 0, len(b.MahjongPoints)+1)
	totals = append(totals, "Total")
	for _, p := range b.MahjongPoints {
		totals = append(totals, p)
	}
	if err := setRow(scoresSheet, row, totals...); err != nil {
		return nil, fmt.Errorf("failed to write totals row: %w", err)
	}

	// Settlement sheet: balances per member, then the transfer list.
	if err := setRow(settlementSheet, 1, "Member", "Mahjong", "Chips", "Expenses", "Final"); err != nil {
		return nil, fmt.Errorf("failed to write settlement header: %w", err)
	}
	for i, member := range b.Members {
		if err := setRow(settlementSheet, i+2, member, b.MahjongBalances[i], b.ChipBalances[i], b.ExpenseBalances[i], b.FinalBalances[i]); err != nil {
			return nil, fmt.Errorf("failed to write balance row: %w", err)
		}
	}

	row = len(b.Members) + 3
	if err := setRow(settlementSheet, row, "From", "To", "Amount"); err != nil {
		return nil, fmt.Errorf("failed to write transfers header: %w", err)
	}
	for i, s := range b.Settlements {
		if err := setRow(settlementSheet, row+1+i, s.From, s.To, s.Amount); err != nil {
			return nil, fmt.Errorf("failed to write transfer row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// withTelemetry wraps a service operation with tracing, metrics, and panic
// recovery.
func withTelemetry[T any](
	s *SettlementService,
	ctx context.Context,
	operationName string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, "SettlementService."+operationName, trace.WithAttributes(
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

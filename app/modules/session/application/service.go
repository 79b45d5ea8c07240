package sessionservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/olebedev/when"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kanchan-Club/seisan-api/app/eventbus"
	groupservice "github.com/Kanchan-Club/seisan-api/app/modules/group/application"
	scoringdomain "github.com/Kanchan-Club/seisan-api/app/modules/scoring/domain"
	sessiondomain "github.com/Kanchan-Club/seisan-api/app/modules/session/domain"
	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
	settlementdomain "github.com/Kanchan-Club/seisan-api/app/modules/settlement/domain"
	"github.com/Kanchan-Club/seisan-api/app/observability"
)

const (
	minSeats = 4
	maxSeats = 5
)

// SessionService implements the Service interface.
type SessionService struct {
	repo       sessiondb.Repository
	groups     groupservice.Service
	eventBus   eventbus.EventBus
	notices    NoticeEnqueuer
	logger     *slog.Logger
	metrics    observability.ServiceMetrics
	tracer     trace.Tracer
	db         *bun.DB
	clock      Clock
	dateParser *when.Parser
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	repo sessiondb.Repository,
	groups groupservice.Service,
	bus eventbus.EventBus,
	notices NoticeEnqueuer,
	logger *slog.Logger,
	metrics observability.ServiceMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	clock Clock,
) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoopMetrics()
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &SessionService{
		repo:       repo,
		groups:     groups,
		eventBus:   bus,
		notices:    notices,
		logger:     logger,
		metrics:    metrics,
		tracer:     tracer,
		db:         db,
		clock:      clock,
		dateParser: newDateParser(),
	}
}

// CreateSession opens a session for a group.
func (s *SessionService) CreateSession(ctx context.Context, req CreateSessionRequest) (*sessiondomain.SessionInfo, error) {
	return withTelemetry(s, ctx, "CreateSession", func(ctx context.Context) (*sessiondomain.SessionInfo, error) {
		date, err := parseSessionDate(s.dateParser, req.Date, s.clock.Now())
		if err != nil {
			return nil, err
		}

		members := req.Members
		if len(members) == 0 {
			group, err := s.groups.GetGroup(ctx, req.GroupUUID)
			if err != nil {
				return nil, err
			}
			members = group.Members
		}
		if len(members) < minSeats || len(members) > maxSeats {
			return nil, ErrMemberCount
		}
		if len(req.Settings.Uma) < len(members) {
			return nil, ErrUmaTooShort
		}

		session := &sessiondb.Session{
			UUID:       uuid.New(),
			GroupUUID:  req.GroupUUID,
			Date:       date,
			Members:    members,
			Settings:   req.Settings,
			ChipConfig: req.ChipConfig,
			ChipCounts: make([]*int, len(members)),
			Status:     string(sessiondomain.StatusActive),
		}
		if err := s.repo.CreateSession(ctx, nil, session); err != nil {
			return nil, err
		}

		s.publishUpdated(ctx, session.UUID, session.GroupUUID, sessiondomain.ActionCreated)

		return toInfo(session), nil
	})
}

// GetSession retrieves one session with rounds and expenses.
func (s *SessionService) GetSession(ctx context.Context, sessionUUID uuid.UUID) (*sessiondomain.SessionInfo, error) {
	return withTelemetry(s, ctx, "GetSession", func(ctx context.Context) (*sessiondomain.SessionInfo, error) {
		session, err := s.repo.GetSession(ctx, nil, sessionUUID)
		if err != nil {
			return nil, err
		}
		return toInfo(session), nil
	})
}

// ListSessionsByGroup retrieves a group's sessions, newest first.
func (s *SessionService) ListSessionsByGroup(ctx context.Context, groupUUID uuid.UUID) ([]sessiondomain.SessionInfo, error) {
	return withTelemetry(s, ctx, "ListSessionsByGroup", func(ctx context.Context) ([]sessiondomain.SessionInfo, error) {
		sessions, err := s.repo.ListSessionsByGroup(ctx, nil, groupUUID)
		if err != nil {
			return nil, err
		}
		infos := make([]sessiondomain.SessionInfo, len(sessions))
		for i := range sessions {
			infos[i] = *toInfo(&sessions[i])
		}
		return infos, nil
	})
}

// AddRound appends a round to an active session.
func (s *SessionService) AddRound(ctx context.Context, sessionUUID uuid.UUID, scores []*int, tobi *scoringdomain.TobiInfo) (*sessiondomain.RoundInfo, error) {
	return withTelemetry(s, ctx, "AddRound", func(ctx context.Context) (*sessiondomain.RoundInfo, error) {
		var round *sessiondb.Round
		var groupUUID uuid.UUID
		err := s.runInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
			session, err := s.loadActiveSession(ctx, tx, sessionUUID)
			if err != nil {
				return err
			}
			if err := validateRound(scores, tobi, len(session.Members), session.Settings.Tobi); err != nil {
				return err
			}

			round = &sessiondb.Round{
				UUID:        uuid.New(),
				SessionUUID: sessionUUID,
				Seq:         nextSeq(session.Rounds),
				Scores:      scores,
				Tobi:        tobi,
			}
			groupUUID = session.GroupUUID
			return s.repo.CreateRound(ctx, tx, round)
		})
		if err != nil {
			return nil, err
		}

		s.publishUpdated(ctx, sessionUUID, groupUUID, sessiondomain.ActionRoundAdded)

		info := toRoundInfo(round)
		return &info, nil
	})
}

// UpdateRound replaces a round's scores and tobi.
func (s *SessionService) UpdateRound(ctx context.Context, sessionUUID, roundUUID uuid.UUID, scores []*int, tobi *scoringdomain.TobiInfo) error {
	_, err := withTelemetry(s, ctx, "UpdateRound", func(ctx context.Context) (struct{}, error) {
		var groupUUID uuid.UUID
		err := s.runInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
			session, err := s.loadActiveSession(ctx, tx, sessionUUID)
			if err != nil {
				return err
			}
			if err := validateRound(scores, tobi, len(session.Members), session.Settings.Tobi); err != nil {
				return err
			}
			groupUUID = session.GroupUUID
			return s.repo.UpdateRound(ctx, tx, &sessiondb.Round{
				UUID:   roundUUID,
				Scores: scores,
				Tobi:   tobi,
			})
		})
		if err != nil {
			return struct{}{}, err
		}
		s.publishUpdated(ctx, sessionUUID, groupUUID, sessiondomain.ActionRoundUpdated)
		return struct{}{}, nil
	})
	return err
}

// DeleteRound removes a round from an active session.
func (s *SessionService) DeleteRound(ctx context.Context, sessionUUID, roundUUID uuid.UUID) error {
	_, err := withTelemetry(s, ctx, "DeleteRound", func(ctx context.Context) (struct{}, error) {
		var groupUUID uuid.UUID
		err := s.runInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
			session, err := s.loadActiveSession(ctx, tx, sessionUUID)
			if err != nil {
				return err
			}
			groupUUID = session.GroupUUID
			return s.repo.DeleteRound(ctx, tx, roundUUID)
		})
		if err != nil {
			return struct{}{}, err
		}
		s.publishUpdated(ctx, sessionUUID, groupUUID, sessiondomain.ActionRoundDeleted)
		return struct{}{}, nil
	})
	return err
}

// UpdateChipCounts records end-of-night chip counts.
func (s *SessionService) UpdateChipCounts(ctx context.Context, sessionUUID uuid.UUID, counts []*int) error {
	_, err := withTelemetry(s, ctx, "UpdateChipCounts", func(ctx context.Context) (struct{}, error) {
		var groupUUID uuid.UUID
		err := s.runInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
			session, err := s.loadActiveSession(ctx, tx, sessionUUID)
			if err != nil {
				return err
			}
			if !session.ChipConfig.Enabled {
				return ErrChipsDisabled
			}
			if len(counts) != len(session.Members) {
				return ErrChipCountsLength
			}
			groupUUID = session.GroupUUID
			return s.repo.UpdateChipCounts(ctx, tx, sessionUUID, counts)
		})
		if err != nil {
			return struct{}{}, err
		}
		s.publishUpdated(ctx, sessionUUID, groupUUID, sessiondomain.ActionChipsUpdated)
		return struct{}{}, nil
	})
	return err
}

// AddExpense attaches an expense to an active session.
func (s *SessionService) AddExpense(ctx context.Context, sessionUUID uuid.UUID, req ExpenseRequest) (*sessiondomain.ExpenseInfo, error) {
	return withTelemetry(s, ctx, "AddExpense", func(ctx context.Context) (*sessiondomain.ExpenseInfo, error) {
		var expense *sessiondb.Expense
		var groupUUID uuid.UUID
		err := s.runInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
			session, err := s.loadActiveSession(ctx, tx, sessionUUID)
			if err != nil {
				return err
			}
			if err := validateExpense(req, session.Members); err != nil {
				return err
			}

			forMembers := req.ForMembers
			if settlementdomain.ExpenseKind(req.Kind) == settlementdomain.ExpenseShared {
				forMembers = nil
			}
			expense = &sessiondb.Expense{
				UUID:        uuid.New(),
				SessionUUID: sessionUUID,
				Description: strings.TrimSpace(req.Description),
				Amount:      req.Amount,
				PaidBy:      req.PaidBy,
				Kind:        req.Kind,
				ForMembers:  forMembers,
			}
			groupUUID = session.GroupUUID
			return s.repo.CreateExpense(ctx, tx, expense)
		})
		if err != nil {
			return nil, err
		}

		s.publishUpdated(ctx, sessionUUID, groupUUID, sessiondomain.ActionExpenseAdded)

		info := toExpenseInfo(expense)
		return &info, nil
	})
}

// DeleteExpense removes an expense from an active session.
func (s *SessionService) DeleteExpense(ctx context.Context, sessionUUID, expenseUUID uuid.UUID) error {
	_, err := withTelemetry(s, ctx, "DeleteExpense", func(ctx context.Context) (struct{}, error) {
		var groupUUID uuid.UUID
		err := s.runInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
			session, err := s.loadActiveSession(ctx, tx, sessionUUID)
			if err != nil {
				return err
			}
			groupUUID = session.GroupUUID
			return s.repo.DeleteExpense(ctx, tx, expenseUUID)
		})
		if err != nil {
			return struct{}{}, err
		}
		s.publishUpdated(ctx, sessionUUID, groupUUID, sessiondomain.ActionExpenseDeleted)
		return struct{}{}, nil
	})
	return err
}

// SettleSession marks a session settled and queues the settlement
// notice for connected devices.
func (s *SessionService) SettleSession(ctx context.Context, sessionUUID uuid.UUID) error {
	_, err := withTelemetry(s, ctx, "SettleSession", func(ctx context.Context) (struct{}, error) {
		var groupUUID uuid.UUID
		err := s.runInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
			session, err := s.loadActiveSession(ctx, tx, sessionUUID)
			if err != nil {
				return err
			}
			groupUUID = session.GroupUUID
			return s.repo.UpdateStatus(ctx, tx, sessionUUID, string(sessiondomain.StatusSettled))
		})
		if err != nil {
			return struct{}{}, err
		}

		s.publishUpdated(ctx, sessionUUID, groupUUID, sessiondomain.ActionSettled)

		if s.notices != nil {
			if err := s.notices.EnqueueSettlementNotice(ctx, sessionUUID); err != nil {
				// The session is settled either way; the notice can be
				// re-sent manually.
				s.logger.WarnContext(ctx, "Failed to enqueue settlement notice",
					slog.String("session_uuid", sessionUUID.String()),
					slog.Any("error", err),
				)
			}
		}
		return struct{}{}, nil
	})
	return err
}

func (s *SessionService) loadActiveSession(ctx context.Context, tx bun.IDB, sessionUUID uuid.UUID) (*sessiondb.Session, error) {
	session, err := s.repo.GetSession(ctx, tx, sessionUUID)
	if err != nil {
		return nil, err
	}
	if session.Status == string(sessiondomain.StatusSettled) {
		return nil, ErrSessionSettled
	}
	return session, nil
}

func (s *SessionService) publishUpdated(ctx context.Context, sessionUUID, groupUUID uuid.UUID, action string) {
	if s.eventBus == nil {
		return
	}
	payload := sessiondomain.SessionUpdatedPayload{
		SessionUUID: sessionUUID,
		GroupUUID:   groupUUID,
		Action:      action,
	}
	if err := s.eventBus.Publish(ctx, sessiondomain.SessionUpdatedSubject, payload); err != nil {
		// Sync events are best-effort; the write already committed.
		s.logger.WarnContext(ctx, "Failed to publish session event",
			slog.String("session_uuid", sessionUUID.String()),
			slog.String("action", action),
			slog.Any("error", err),
		)
	}
}

func (s *SessionService) runInTx(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

func validateRound(scores []*int, tobi *scoringdomain.TobiInfo, seats int, tobiEnabled bool) error {
	if len(scores) != seats {
		return ErrScoresLength
	}
	active := 0
	for _, sc := range scores {
		if sc != nil {
			active++
		}
	}
	if active == 0 {
		return ErrNoActiveScores
	}
	if tobi != nil {
		if !tobiEnabled {
			return ErrTobiDisabled
		}
		if tobi.Victim == tobi.Attacker {
			return ErrTobiInvalid
		}
		for _, seat := range []int{tobi.Victim, tobi.Attacker} {
			if seat < 0 || seat >= seats || scores[seat] == nil {
				return ErrTobiInvalid
			}
		}
	}
	return nil
}

func validateExpense(req ExpenseRequest, members []string) error {
	if strings.TrimSpace(req.Description) == "" {
		return ErrDescriptionBlank
	}
	if req.Amount <= 0 {
		return ErrExpenseAmount
	}
	if !isMember(members, req.PaidBy) {
		return ErrUnknownMember
	}
	switch settlementdomain.ExpenseKind(req.Kind) {
	case settlementdomain.ExpenseShared:
		return nil
	case settlementdomain.ExpenseIndividual:
		if len(req.ForMembers) == 0 {
			return ErrExpenseNoTargets
		}
		for _, m := range req.ForMembers {
			if !isMember(members, m) {
				return ErrUnknownMember
			}
		}
		return nil
	default:
		return ErrExpenseKind
	}
}

func isMember(members []string, name string) bool {
	for _, m := range members {
		if m == name {
			return true
		}
	}
	return false
}

func nextSeq(rounds []*sessiondb.Round) int {
	seq := 1
	for _, r := range rounds {
		if r.Seq >= seq {
			seq = r.Seq + 1
		}
	}
	return seq
}

func toInfo(session *sessiondb.Session) *sessiondomain.SessionInfo {
	info := &sessiondomain.SessionInfo{
		UUID:       session.UUID,
		GroupUUID:  session.GroupUUID,
		Date:       session.Date,
		Members:    session.Members,
		Settings:   session.Settings,
		ChipConfig: session.ChipConfig,
		ChipCounts: session.ChipCounts,
		Status:     sessiondomain.Status(session.Status),
		Rounds:     make([]sessiondomain.RoundInfo, len(session.Rounds)),
		Expenses:   make([]sessiondomain.ExpenseInfo, len(session.Expenses)),
		CreatedAt:  session.CreatedAt,
	}
	for i, r := range session.Rounds {
		info.Rounds[i] = toRoundInfo(r)
	}
	for i, e := range session.Expenses {
		info.Expenses[i] = toExpenseInfo(e)
	}
	return info
}

func toRoundInfo(round *sessiondb.Round) sessiondomain.RoundInfo {
	return sessiondomain.RoundInfo{
		UUID:   round.UUID,
		Seq:    round.Seq,
		Scores: round.Scores,
		Tobi:   round.Tobi,
	}
}

func toExpenseInfo(expense *sessiondb.Expense) sessiondomain.ExpenseInfo {
	return sessiondomain.ExpenseInfo{
		UUID:        expense.UUID,
		Description: expense.Description,
		Amount:      expense.Amount,
		PaidBy:      expense.PaidBy,
		Kind:        settlementdomain.ExpenseKind(expense.Kind),
		ForMembers:  expense.ForMembers,
	}
}

// withTelemetry wraps a service operation with tracing, metrics, and panic
// recovery.
func withTelemetry[T any](
	s *SessionService,
	ctx context.Context,
	operationName string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, "SessionService."+operationName, trace.WithAttributes(
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

package sessionhandlers

import (
	"context"

	"github.com/google/uuid"

	scoringdomain "github.com/Kanchan-Club/seisan-api/app/modules/scoring/domain"
	sessionservice "github.com/Kanchan-Club/seisan-api/app/modules/session/application"
	sessiondomain "github.com/Kanchan-Club/seisan-api/app/modules/session/domain"
)

// ------------------------
// Fake Session Service
// ------------------------

type FakeSessionService struct {
	trace []string

	CreateSessionFunc       func(ctx context.Context, req sessionservice.CreateSessionRequest) (*sessiondomain.SessionInfo, error)
	GetSessionFunc          func(ctx context.Context, sessionUUID uuid.UUID) (*sessiondomain.SessionInfo, error)
	ListSessionsByGroupFunc func(ctx context.Context, groupUUID uuid.UUID) ([]sessiondomain.SessionInfo, error)
	AddRoundFunc            func(ctx context.Context, sessionUUID uuid.UUID, scores []*int, tobi *scoringdomain.TobiInfo) (*sessiondomain.RoundInfo, error)
	UpdateRoundFunc         func(ctx context.Context, sessionUUID, roundUUID uuid.UUID, scores []*int, tobi *scoringdomain.TobiInfo) error
	DeleteRoundFunc         func(ctx context.Context, sessionUUID, roundUUID uuid.UUID) error
	UpdateChipCountsFunc    func(ctx context.Context, sessionUUID uuid.UUID, counts []*int) error
	AddExpenseFunc          func(ctx context.Context, sessionUUID uuid.UUID, req sessionservice.ExpenseRequest) (*sessiondomain.ExpenseInfo, error)
	DeleteExpenseFunc       func(ctx context.Context, sessionUUID, expenseUUID uuid.UUID) error
	SettleSessionFunc       func(ctx context.Context, sessionUUID uuid.UUID) error
}

func NewFakeSessionService() *FakeSessionService {
	return &FakeSessionService{trace: []string{}}
}

func (f *FakeSessionService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeSessionService) CreateSession(ctx context.Context, req sessionservice.CreateSessionRequest) (*sessiondomain.SessionInfo, error) {
	f.record("CreateSession")
	if f.CreateSessionFunc != nil {
		return f.CreateSessionFunc(ctx, req)
	}
	return &sessiondomain.SessionInfo{UUID: uuid.New(), GroupUUID: req.GroupUUID, Status: sessiondomain.StatusActive}, nil
}

func (f *FakeSessionService) GetSession(ctx context.Context, sessionUUID uuid.UUID) (*sessiondomain.SessionInfo, error) {
	f.record("GetSession")
	if f.GetSessionFunc != nil {
		return f.GetSessionFunc(ctx, sessionUUID)
	}
	return &sessiondomain.SessionInfo{UUID: sessionUUID, Status: sessiondomain.StatusActive}, nil
}

func (f *FakeSessionService) ListSessionsByGroup(ctx context.Context, groupUUID uuid.UUID) ([]sessiondomain.SessionInfo, error) {
	f.record("ListSessionsByGroup")
	if f.ListSessionsByGroupFunc != nil {
		return f.ListSessionsByGroupFunc(ctx, groupUUID)
	}
	return nil, nil
}

func (f *FakeSessionService) AddRound(ctx context.Context, sessionUUID uuid.UUID, scores []*int, tobi *scoringdomain.TobiInfo) (*sessiondomain.RoundInfo, error) {
	f.record("AddRound")
	if f.AddRoundFunc != nil {
		return f.AddRoundFunc(ctx, sessionUUID, scores, tobi)
	}
	return &sessiondomain.RoundInfo{UUID: uuid.New(), Seq: 1, Scores: scores, Tobi: tobi}, nil
}

func (f *FakeSessionService) UpdateRound(ctx context.Context, sessionUUID, roundUUID uuid.UUID, scores []*int, tobi *scoringdomain.TobiInfo) error {
	f.record("UpdateRound")
	if f.UpdateRoundFunc != nil {
		return f.UpdateRoundFunc(ctx, sessionUUID, roundUUID, scores, tobi)
	}
	return nil
}

func (f *FakeSessionService) DeleteRound(ctx context.Context, sessionUUID, roundUUID uuid.UUID) error {
	f.record("DeleteRound")
	if f.DeleteRoundFunc != nil {
		return f.DeleteRoundFunc(ctx, sessionUUID, roundUUID)
	}
	return nil
}

func (f *FakeSessionService) UpdateChipCounts(ctx context.Context, sessionUUID uuid.UUID, counts []*int) error {
	f.record("UpdateChipCounts")
	if f.UpdateChipCountsFunc != nil {
		return f.UpdateChipCountsFunc(ctx, sessionUUID, counts)
	}
	return nil
}

func (f *FakeSessionService) AddExpense(ctx context.Context, sessionUUID uuid.UUID, req sessionservice.ExpenseRequest) (*sessiondomain.ExpenseInfo, error) {
	f.record("AddExpense")
	if f.AddExpenseFunc != nil {
		return f.AddExpenseFunc(ctx, sessionUUID, req)
	}
	return &sessiondomain.ExpenseInfo{UUID: uuid.New(), Description: req.Description, Amount: req.Amount}, nil
}

func (f *FakeSessionService) DeleteExpense(ctx context.Context, sessionUUID, expenseUUID uuid.UUID) error {
	f.record("DeleteExpense")
	if f.DeleteExpenseFunc != nil {
		return f.DeleteExpenseFunc(ctx, sessionUUID, expenseUUID)
	}
	return nil
}

func (f *FakeSessionService) SettleSession(ctx context.Context, sessionUUID uuid.UUID) error {
	f.record("SettleSession")
	if f.SettleSessionFunc != nil {
		return f.SettleSessionFunc(ctx, sessionUUID)
	}
	return nil
}

func (f *FakeSessionService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ sessionservice.Service = (*FakeSessionService)(nil)

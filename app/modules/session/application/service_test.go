package sessionservice

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"

	scoringdomain "github.com/Kanchan-Club/seisan-api/app/modules/scoring/domain"
	sessiondomain "github.com/Kanchan-Club/seisan-api/app/modules/session/domain"
	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

func ptr(v int) *int { return &v }

func defaultSettings() sessiondomain.Settings {
	return sessiondomain.Settings{
		Rate:         100,
		Uma:          []int{30, 10, -10, -30},
		StartPoints:  25,
		ReturnPoints: 30,
		Tobi:         true,
		TobiPenalty:  10,
	}
}

func activeSession(sessionUUID uuid.UUID) *sessiondb.Session {
	return &sessiondb.Session{
		UUID:       sessionUUID,
		GroupUUID:  uuid.New(),
		Date:       testNow,
		Members:    []string{"Alice", "Bob", "Chika", "Daiki"},
		Settings:   defaultSettings(),
		ChipConfig: sessiondomain.ChipConfig{Enabled: true, StartChips: 20, PricePerChip: 50},
		ChipCounts: make([]*int, 4),
		Status:     string(sessiondomain.StatusActive),
	}
}

func newTestService(repo *FakeSessionRepo, bus *FakeEventBus, notices *FakeNoticeEnqueuer) *SessionService {
	return NewSessionService(repo, &FakeGroupService{}, bus, notices, slog.Default(), nil, nil, nil, fixedClock{testNow})
}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateSessionRequest
		wantErr error
	}{
		{
			name: "snapshots group members when none given",
			req: CreateSessionRequest{
				GroupUUID: uuid.New(),
				Settings:  defaultSettings(),
			},
		},
		{
			name: "explicit five seats",
			req: CreateSessionRequest{
				GroupUUID: uuid.New(),
				Members:   []string{"Alice", "Bob", "Chika", "Daiki", "Emi"},
				Settings: sessiondomain.Settings{
					Uma:          []int{30, 10, 0, -10, -30},
					StartPoints:  25,
					ReturnPoints: 30,
				},
			},
		},
		{
			name: "too few seats",
			req: CreateSessionRequest{
				GroupUUID: uuid.New(),
				Members:   []string{"Alice", "Bob", "Chika"},
				Settings:  defaultSettings(),
			},
			wantErr: ErrMemberCount,
		},
		{
			name: "uma shorter than seat count",
			req: CreateSessionRequest{
				GroupUUID: uuid.New(),
				Members:   []string{"Alice", "Bob", "Chika", "Daiki", "Emi"},
				Settings:  defaultSettings(),
			},
			wantErr: ErrUmaTooShort,
		},
		{
			name: "unparseable date",
			req: CreateSessionRequest{
				GroupUUID: uuid.New(),
				Date:      "the heat death of the universe",
				Settings:  defaultSettings(),
			},
			wantErr: ErrBadDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeSessionRepo()
			bus := &FakeEventBus{}
			svc := newTestService(repo, bus, nil)

			info, err := svc.CreateSession(context.Background(), tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, bus.Published)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, sessiondomain.StatusActive, info.Status)
			assert.Len(t, info.ChipCounts, len(info.Members))
			if len(tt.req.Members) == 0 {
				assert.Equal(t, []string{"Alice", "Bob", "Chika", "Daiki"}, info.Members)
			}
			if assert.Len(t, bus.Published, 1) {
				assert.Equal(t, sessiondomain.SessionUpdatedSubject, bus.Published[0].Subject)
			}
		})
	}
}

func TestCreateSessionNaturalLanguageDate(t *testing.T) {
	repo := NewFakeSessionRepo()
	var created *sessiondb.Session
	repo.CreateSessionFunc = func(ctx context.Context, db bun.IDB, session *sessiondb.Session) error {
		created = session
		return nil
	}
	svc := newTestService(repo, &FakeEventBus{}, nil)

	_, err := svc.CreateSession(context.Background(), CreateSessionRequest{
		GroupUUID: uuid.New(),
		Date:      "yesterday",
		Settings:  defaultSettings(),
	})
	assert.NoError(t, err)
	assert.Equal(t, testNow.AddDate(0, 0, -1).Day(), created.Date.Day())
}

func TestAddRound(t *testing.T) {
	sessionUUID := uuid.New()

	tests := []struct {
		name    string
		scores  []*int
		tobi    *scoringdomain.TobiInfo
		wantErr error
	}{
		{
			name:   "happy path",
			scores: []*int{ptr(42300), ptr(30000), ptr(22700), ptr(5000)},
		},
		{
			name:   "sit-out seat",
			scores: []*int{ptr(35000), nil, ptr(40000), ptr(25000)},
		},
		{
			name:    "wrong vector length",
			scores:  []*int{ptr(42300), ptr(30000)},
			wantErr: ErrScoresLength,
		},
		{
			name:    "all seats sat out",
			scores:  []*int{nil, nil, nil, nil},
			wantErr: ErrNoActiveScores,
		},
		{
			name:   "valid tobi",
			scores: []*int{ptr(52000), ptr(30000), ptr(20000), ptr(-2000)},
			tobi:   &scoringdomain.TobiInfo{Victim: 3, Attacker: 0},
		},
		{
			name:    "tobi victim equals attacker",
			scores:  []*int{ptr(40000), ptr(30000), ptr(20000), ptr(10000)},
			tobi:    &scoringdomain.TobiInfo{Victim: 1, Attacker: 1},
			wantErr: ErrTobiInvalid,
		},
		{
			name:    "tobi on sitting-out seat",
			scores:  []*int{ptr(50000), nil, ptr(30000), ptr(20000)},
			tobi:    &scoringdomain.TobiInfo{Victim: 1, Attacker: 0},
			wantErr: ErrTobiInvalid,
		},
		{
			name:    "tobi out of range",
			scores:  []*int{ptr(40000), ptr(30000), ptr(20000), ptr(10000)},
			tobi:    &scoringdomain.TobiInfo{Victim: 4, Attacker: 0},
			wantErr: ErrTobiInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeSessionRepo()
			repo.GetSessionFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*sessiondb.Session, error) {
				return activeSession(sessionUUID), nil
			}
			bus := &FakeEventBus{}
			svc := newTestService(repo, bus, nil)

			round, err := svc.AddRound(context.Background(), sessionUUID, tt.scores, tt.tobi)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, bus.Published)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, 1, round.Seq)
			assert.Equal(t, tt.scores, round.Scores)
		})
	}
}

func TestAddRoundTobiDisabled(t *testing.T) {
	sessionUUID := uuid.New()
	repo := NewFakeSessionRepo()
	repo.GetSessionFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*sessiondb.Session, error) {
		session := activeSession(sessionUUID)
		session.Settings.Tobi = false
		return session, nil
	}
	bus := &FakeEventBus{}
	svc := newTestService(repo, bus, nil)

	scores := []*int{ptr(52000), ptr(30000), ptr(20000), ptr(-2000)}
	_, err := svc.AddRound(context.Background(), sessionUUID, scores, &scoringdomain.TobiInfo{Victim: 3, Attacker: 0})
	assert.ErrorIs(t, err, ErrTobiDisabled)
	assert.Empty(t, bus.Published)

	// The same scores without a marker are fine.
	round, err := svc.AddRound(context.Background(), sessionUUID, scores, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, round.Seq)
}

func TestAddRoundSeqAfterDeletion(t *testing.T) {
	sessionUUID := uuid.New()
	repo := NewFakeSessionRepo()
	repo.GetSessionFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*sessiondb.Session, error) {
		session := activeSession(sessionUUID)
		// Seq 2 was deleted; a new round must not reuse seq 3.
		session.Rounds = []*sessiondb.Round{
			{UUID: uuid.New(), Seq: 1},
			{UUID: uuid.New(), Seq: 3},
		}
		return session, nil
	}
	svc := newTestService(repo, &FakeEventBus{}, nil)

	round, err := svc.AddRound(context.Background(), sessionUUID, []*int{ptr(40000), ptr(30000), ptr(20000), ptr(10000)}, nil)
	assert.NoError(t, err)
	assert.Equal(t, 4, round.Seq)
}

func TestWritesRejectedOnSettledSession(t *testing.T) {
	sessionUUID := uuid.New()
	repo := NewFakeSessionRepo()
	repo.GetSessionFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*sessiondb.Session, error) {
		session := activeSession(sessionUUID)
		session.Status = string(sessiondomain.StatusSettled)
		return session, nil
	}
	svc := newTestService(repo, &FakeEventBus{}, nil)
	ctx := context.Background()

	_, err := svc.AddRound(ctx, sessionUUID, []*int{ptr(40000), ptr(30000), ptr(20000), ptr(10000)}, nil)
	assert.ErrorIs(t, err, ErrSessionSettled)

	err = svc.UpdateChipCounts(ctx, sessionUUID, []*int{ptr(25), ptr(20), ptr(15), ptr(20)})
	assert.ErrorIs(t, err, ErrSessionSettled)

	err = svc.SettleSession(ctx, sessionUUID)
	assert.ErrorIs(t, err, ErrSessionSettled)
}

func TestUpdateChipCounts(t *testing.T) {
	sessionUUID := uuid.New()

	newRepo := func(enabled bool) *FakeSessionRepo {
		repo := NewFakeSessionRepo()
		repo.GetSessionFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*sessiondb.Session, error) {
			session := activeSession(sessionUUID)
			session.ChipConfig.Enabled = enabled
			return session, nil
		}
		return repo
	}

	t.Run("happy path", func(t *testing.T) {
		svc := newTestService(newRepo(true), &FakeEventBus{}, nil)
		err := svc.UpdateChipCounts(context.Background(), sessionUUID, []*int{ptr(25), ptr(18), ptr(22), ptr(15)})
		assert.NoError(t, err)
	})

	t.Run("chips disabled", func(t *testing.T) {
		svc := newTestService(newRepo(false), &FakeEventBus{}, nil)
		err := svc.UpdateChipCounts(context.Background(), sessionUUID, []*int{ptr(25), ptr(18), ptr(22), ptr(15)})
		assert.ErrorIs(t, err, ErrChipsDisabled)
	})

	t.Run("wrong length", func(t *testing.T) {
		svc := newTestService(newRepo(true), &FakeEventBus{}, nil)
		err := svc.UpdateChipCounts(context.Background(), sessionUUID, []*int{ptr(25)})
		assert.ErrorIs(t, err, ErrChipCountsLength)
	})
}

func TestAddExpense(t *testing.T) {
	sessionUUID := uuid.New()

	tests := []struct {
		name    string
		req     ExpenseRequest
		wantErr error
	}{
		{
			name: "shared expense",
			req:  ExpenseRequest{Description: "Room fee", Amount: 4000, PaidBy: "Alice", Kind: "shared"},
		},
		{
			name: "individual expense",
			req: ExpenseRequest{
				Description: "Late-night ramen",
				Amount:      1800,
				PaidBy:      "Bob",
				Kind:        "individual",
				ForMembers:  []string{"Bob", "Chika"},
			},
		},
		{
			name:    "zero amount",
			req:     ExpenseRequest{Description: "Room fee", Amount: 0, PaidBy: "Alice", Kind: "shared"},
			wantErr: ErrExpenseAmount,
		},
		{
			name:    "blank description",
			req:     ExpenseRequest{Description: "  ", Amount: 4000, PaidBy: "Alice", Kind: "shared"},
			wantErr: ErrDescriptionBlank,
		},
		{
			name:    "unknown payer",
			req:     ExpenseRequest{Description: "Room fee", Amount: 4000, PaidBy: "Mallory", Kind: "shared"},
			wantErr: ErrUnknownMember,
		},
		{
			name:    "bad kind",
			req:     ExpenseRequest{Description: "Room fee", Amount: 4000, PaidBy: "Alice", Kind: "split"},
			wantErr: ErrExpenseKind,
		},
		{
			name:    "individual without targets",
			req:     ExpenseRequest{Description: "Ramen", Amount: 1800, PaidBy: "Bob", Kind: "individual"},
			wantErr: ErrExpenseNoTargets,
		},
		{
			name: "individual with unknown target",
			req: ExpenseRequest{
				Description: "Ramen",
				Amount:      1800,
				PaidBy:      "Bob",
				Kind:        "individual",
				ForMembers:  []string{"Mallory"},
			},
			wantErr: ErrUnknownMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeSessionRepo()
			repo.GetSessionFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*sessiondb.Session, error) {
				return activeSession(sessionUUID), nil
			}
			svc := newTestService(repo, &FakeEventBus{}, nil)

			expense, err := svc.AddExpense(context.Background(), sessionUUID, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.req.Amount, expense.Amount)
			if tt.req.Kind == "shared" {
				assert.Empty(t, expense.ForMembers)
			}
		})
	}
}

func TestSettleSession(t *testing.T) {
	sessionUUID := uuid.New()
	repo := NewFakeSessionRepo()
	repo.GetSessionFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*sessiondb.Session, error) {
		return activeSession(sessionUUID), nil
	}

	bus := &FakeEventBus{}
	notices := &FakeNoticeEnqueuer{}
	svc := newTestService(repo, bus, notices)

	err := svc.SettleSession(context.Background(), sessionUUID)
	assert.NoError(t, err)

	assert.Contains(t, repo.Trace(), "UpdateStatus")
	assert.Equal(t, []uuid.UUID{sessionUUID}, notices.Enqueued)

	if assert.Len(t, bus.Published, 1) {
		payload, ok := bus.Published[0].Payload.(sessiondomain.SessionUpdatedPayload)
		assert.True(t, ok)
		assert.Equal(t, sessiondomain.ActionSettled, payload.Action)
	}
}

func TestParseSessionDate(t *testing.T) {
	parser := newDateParser()

	t.Run("rfc3339", func(t *testing.T) {
		got, err := parseSessionDate(parser, "2026-03-14T19:00:00Z", testNow)
		assert.NoError(t, err)
		assert.Equal(t, testNow, got)
	})

	t.Run("plain date", func(t *testing.T) {
		got, err := parseSessionDate(parser, "2026-03-10", testNow)
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("empty defaults to now", func(t *testing.T) {
		got, err := parseSessionDate(parser, "", testNow)
		assert.NoError(t, err)
		assert.Equal(t, testNow, got)
	})

	t.Run("natural language", func(t *testing.T) {
		got, err := parseSessionDate(parser, "yesterday", testNow)
		assert.NoError(t, err)
		assert.Equal(t, testNow.AddDate(0, 0, -1).Day(), got.Day())
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseSessionDate(parser, "the heat death of the universe", testNow)
		assert.ErrorIs(t, err, ErrBadDate)
	})
}

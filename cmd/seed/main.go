package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	groupdb "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/repositories"
	sessiondomain "github.com/Kanchan-Club/seisan-api/app/modules/session/domain"
	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
	"github.com/Kanchan-Club/seisan-api/config"
	"github.com/Kanchan-Club/seisan-api/db/bundb"
)

const totalRoundPoints = 100000

// seed fills the database with one demo group and a handful of played
// sessions. Intended for local development against a fresh database.
func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	sessions := flag.Int("sessions", 5, "Number of sessions to create")
	seed := flag.Uint64("seed", 0, "Faker seed (0 = random)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer dbService.Close()

	faker := gofakeit.New(*seed)

	members := make([]string, 4)
	for i := range members {
		members[i] = faker.FirstName()
	}

	group := &groupdb.Group{
		UUID:    uuid.New(),
		Name:    faker.NounCollectiveThing() + " club",
		Members: members,
	}
	if err := dbService.Group.Create(ctx, nil, group); err != nil {
		log.Fatalf("failed to create group: %v", err)
	}
	logger.Info("Seeded group", slog.String("uuid", group.UUID.String()), slog.String("name", group.Name))

	for i := 0; i < *sessions; i++ {
		if err := seedSession(ctx, dbService, faker, group, i); err != nil {
			log.Fatalf("failed to seed session %d: %v", i+1, err)
		}
	}
	logger.Info("Seeding complete", slog.Int("sessions", *sessions))
}

func seedSession(ctx context.Context, dbService *bundb.DBService, faker *gofakeit.Faker, group *groupdb.Group, n int) error {
	session := &sessiondb.Session{
		UUID:      uuid.New(),
		GroupUUID: group.UUID,
		Date:      time.Now().AddDate(0, 0, -7*(n+1)),
		Members:   group.Members,
		Settings: sessiondomain.Settings{
			Rate:         100,
			Uma:          []int{30, 10, -10, -30},
			StartPoints:  25,
			ReturnPoints: 30,
			Tobi:         true,
			TobiPenalty:  10,
		},
		ChipConfig: sessiondomain.ChipConfig{
			Enabled:      true,
			StartChips:   20,
			PricePerChip: 50,
		},
		ChipCounts: randomChipCounts(faker, len(group.Members)),
		Status:     string(sessiondomain.StatusSettled),
	}
	if err := dbService.Session.CreateSession(ctx, nil, session); err != nil {
		return err
	}

	roundCount := faker.Number(2, 6)
	for seq := 1; seq <= roundCount; seq++ {
		round := &sessiondb.Round{
			UUID:        uuid.New(),
			SessionUUID: session.UUID,
			Seq:         seq,
			Scores:      randomScores(faker, len(group.Members)),
		}
		if err := dbService.Session.CreateRound(ctx, nil, round); err != nil {
			return err
		}
	}

	expense := &sessiondb.Expense{
		UUID:        uuid.New(),
		SessionUUID: session.UUID,
		Description: faker.ProductName(),
		Amount:      faker.Number(10, 80) * 100,
		PaidBy:      group.Members[faker.Number(0, len(group.Members)-1)],
		Kind:        "shared",
	}
	return dbService.Session.CreateExpense(ctx, nil, expense)
}

// randomScores deals totalRoundPoints across the seats in thousands.
func randomScores(faker *gofakeit.Faker, seats int) []*int {
	scores := make([]*int, seats)
	remaining := totalRoundPoints
	for i := 0; i < seats-1; i++ {
		v := faker.Number(0, remaining/1000) * 1000
		scores[i] = &v
		remaining -= v
	}
	scores[seats-1] = &remaining
	return scores
}

func randomChipCounts(faker *gofakeit.Faker, seats int) []*int {
	counts := make([]*int, seats)
	for i := range counts {
		v := faker.Number(10, 30)
		counts[i] = &v
	}
	return counts
}

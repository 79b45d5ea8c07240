package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"

	natscontainer "github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"github.com/Kanchan-Club/seisan-api/app/eventbus"
	groupdb "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/repositories"
	groupmigrations "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/repositories/migrations"
	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
	sessionmigrations "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories/migrations"
	"github.com/Kanchan-Club/seisan-api/integration_tests/containers"
)

// TestEnvironment holds the containers and connections shared by the
// integration tests in one package.
type TestEnvironment struct {
	Ctx         context.Context
	PgContainer *postgres.PostgresContainer
	NatsURL     string
	DB          *bun.DB
	GroupRepo   groupdb.Repository
	SessionRepo sessiondb.Repository
	EventBus    eventbus.EventBus

	natsContainer *natscontainer.NATSContainer
	cancel        context.CancelFunc
}

// NewTestEnvironment starts Postgres and NATS containers, runs the
// migrations, and wires repositories plus an event bus against them.
func NewTestEnvironment(t *testing.T) (*TestEnvironment, error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	pgContainer, connStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		cancel()
		return nil, err
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	db := bun.NewDB(sqldb, pgdialect.New())
	db.RegisterModel(
		(*groupdb.Group)(nil),
		(*sessiondb.Session)(nil),
		(*sessiondb.Round)(nil),
		(*sessiondb.Expense)(nil),
	)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		_ = natsContainer.Terminate(ctx)
		_ = pgContainer.Terminate(ctx)
		cancel()
		return nil, err
	}

	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus, err := eventbus.New(ctx, natsURL, discardLogger)
	if err != nil {
		_ = db.Close()
		_ = natsContainer.Terminate(ctx)
		_ = pgContainer.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	if err := eventbus.InitializeStreams(ctx, bus, discardLogger); err != nil {
		_ = bus.Close()
		_ = db.Close()
		_ = natsContainer.Terminate(ctx)
		_ = pgContainer.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("failed to initialize streams: %w", err)
	}

	return &TestEnvironment{
		Ctx:           ctx,
		PgContainer:   pgContainer,
		NatsURL:       natsURL,
		DB:            db,
		GroupRepo:     groupdb.NewRepository(db),
		SessionRepo:   sessiondb.NewRepository(db),
		EventBus:      bus,
		natsContainer: natsContainer,
		cancel:        cancel,
	}, nil
}

// Cleanup tears the environment down. Safe to call once from TestMain
// or t.Cleanup.
func (env *TestEnvironment) Cleanup() {
	ctx := context.Background()
	if env.EventBus != nil {
		_ = env.EventBus.Close()
	}
	if env.DB != nil {
		_ = env.DB.Close()
	}
	if env.natsContainer != nil {
		_ = env.natsContainer.Terminate(ctx)
	}
	if env.PgContainer != nil {
		_ = env.PgContainer.Terminate(ctx)
	}
	env.cancel()
}

// ResetTables truncates all application tables between tests.
func (env *TestEnvironment) ResetTables(ctx context.Context) error {
	_, err := env.DB.ExecContext(ctx, "TRUNCATE groups, sessions, rounds, expenses CASCADE")
	return err
}

func runMigrations(ctx context.Context, db *bun.DB) error {
	for _, migrations := range []*migrate.Migrations{
		groupmigrations.Migrations,
		sessionmigrations.Migrations,
	} {
		migrator := migrate.NewMigrator(db, migrations)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to init migrations: %w", err)
		}
		if _, err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return nil
}

package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	groupdb "github.com/Kanchan-Club/seisan-api/app/modules/group/infrastructure/repositories"
	sessiondb "github.com/Kanchan-Club/seisan-api/app/modules/session/infrastructure/repositories"
	"github.com/Kanchan-Club/seisan-api/config"
)

// DBService bundles the bun connection with the repositories built on
// it.
type DBService struct {
	Group   groupdb.Repository
	Session sessiondb.Repository
	db      *bun.DB
}

// GetDB returns the underlying database connection pool.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// NewBunDBService connects to Postgres and wires up the repositories.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*DBService, error) {
	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	// Has-many relations resolve through the model registry.
	db.RegisterModel(
		(*groupdb.Group)(nil),
		(*sessiondb.Session)(nil),
		(*sessiondb.Round)(nil),
		(*sessiondb.Expense)(nil),
	)

	logger.InfoContext(ctx, "Database connection established")
	return &DBService{
		Group:   groupdb.NewRepository(db),
		Session: sessiondb.NewRepository(db),
		db:      db,
	}, nil
}

// Close closes the underlying connection pool.
func (s *DBService) Close() error {
	return s.db.Close()
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}

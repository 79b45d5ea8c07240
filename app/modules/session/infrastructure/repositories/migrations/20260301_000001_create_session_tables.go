package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating sessions, rounds, and expenses tables...")
			if _, err := db.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS sessions (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					group_uuid UUID NOT NULL REFERENCES groups(uuid) ON DELETE CASCADE,
					date TIMESTAMPTZ NOT NULL,
					members JSONB NOT NULL DEFAULT '[]',
					settings JSONB NOT NULL DEFAULT '{}',
					chip_config JSONB NOT NULL DEFAULT '{}',
					chip_counts JSONB,
					status VARCHAR(20) NOT NULL DEFAULT 'active',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create sessions table: %w", err)
			}
			if _, err := db.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_sessions_group_uuid ON sessions(group_uuid);
			`); err != nil {
				return fmt.Errorf("failed to create sessions group index: %w", err)
			}
			if _, err := db.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS rounds (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					session_uuid UUID NOT NULL REFERENCES sessions(uuid) ON DELETE CASCADE,
					seq INTEGER NOT NULL,
					scores JSONB NOT NULL,
					tobi JSONB,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (session_uuid, seq)
				);
			`); err != nil {
				return fmt.Errorf("failed to create rounds table: %w", err)
			}
			if _, err := db.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS expenses (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					session_uuid UUID NOT NULL REFERENCES sessions(uuid) ON DELETE CASCADE,
					description VARCHAR(200) NOT NULL,
					amount INTEGER NOT NULL,
					paid_by VARCHAR(100) NOT NULL,
					kind VARCHAR(20) NOT NULL,
					for_members JSONB,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create expenses table: %w", err)
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping expenses, rounds, and sessions tables...")
			if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS expenses;`); err != nil {
				return fmt.Errorf("failed to drop expenses table: %w", err)
			}
			if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS rounds;`); err != nil {
				return fmt.Errorf("failed to drop rounds table: %w", err)
			}
			if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS sessions;`); err != nil {
				return fmt.Errorf("failed to drop sessions table: %w", err)
			}
			return nil
		},
	)
}

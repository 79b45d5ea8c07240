package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating groups table...")
			if _, err := db.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS groups (
					uuid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					name VARCHAR(100) NOT NULL,
					members JSONB NOT NULL DEFAULT '[]',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create groups table: %w", err)
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping groups table...")
			if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS groups;`); err != nil {
				return fmt.Errorf("failed to drop groups table: %w", err)
			}
			return nil
		},
	)
}

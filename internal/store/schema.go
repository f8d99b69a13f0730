package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrate creates the notifications table and its status index if missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	tsType := "TIMESTAMPTZ"
	if db.DriverName() == "sqlite" {
		tsType = "TIMESTAMP"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS notifications (
			id            TEXT PRIMARY KEY,
			recipient     TEXT NOT NULL,
			subject       TEXT NOT NULL,
			body          TEXT NOT NULL,
			channel       TEXT NOT NULL,
			status        TEXT NOT NULL,
			retry_count   INTEGER NOT NULL DEFAULT 0,
			error_message TEXT,
			created_at    ` + tsType + ` NOT NULL,
			updated_at    ` + tsType + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_status ON notifications (status)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate notifications schema: %w", err)
		}
	}
	return nil
}

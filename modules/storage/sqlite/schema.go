package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// schemaStatements are executed in order to create the database schema.
// All use IF NOT EXISTS for idempotent re-application.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS ideas (
		id          TEXT PRIMARY KEY,
		title       TEXT    NOT NULL,
		raw_text    TEXT    NOT NULL DEFAULT '',
		transcript  TEXT    NOT NULL DEFAULT '',
		attachments TEXT    NOT NULL DEFAULT '[]',
		status      TEXT    NOT NULL,
		category    TEXT    NOT NULL DEFAULT '',
		confidence  REAL    NOT NULL DEFAULT 0,
		source      TEXT    NOT NULL DEFAULT '',
		chat_id     INTEGER NOT NULL DEFAULT 0,
		user_id     INTEGER NOT NULL DEFAULT 0,
		enrichment  TEXT    NOT NULL DEFAULT '',
		created_at  TEXT    NOT NULL,
		updated_at  TEXT    NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_ideas_status ON ideas(status)`,

	`CREATE INDEX IF NOT EXISTS idx_ideas_category ON ideas(category)`,

	`CREATE TABLE IF NOT EXISTS categories (
		name  TEXT NOT NULL UNIQUE COLLATE NOCASE,
		color TEXT NOT NULL DEFAULT 'default'
	)`,
}

// migrate creates or updates the database schema to the latest version.
// All DDL uses IF NOT EXISTS, making migration idempotent.
func migrate(db *sql.DB) error {
	ctx := context.TODO()

	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("sqlite: create schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("sqlite: read schema version: %w", err)
	}

	if current >= schemaVersion {
		return nil
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w\nstatement: %s", err, stmt)
		}
	}

	if _, err := db.ExecContext(ctx, "INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("sqlite: record schema version: %w", err)
	}

	return nil
}

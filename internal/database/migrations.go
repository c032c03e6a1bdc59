package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied statement by statement; every statement is idempotent.
// prev_id/next_id carry UNIQUE indexes so the store itself refuses a fork.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS boards (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		is_public INTEGER NOT NULL DEFAULT 0,
		public_level TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS board_grants (
		board_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		level TEXT NOT NULL,
		PRIMARY KEY (board_id, user_id),
		FOREIGN KEY (board_id) REFERENCES boards(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS columns (
		id TEXT PRIMARY KEY,
		board_id TEXT NOT NULL,
		title TEXT NOT NULL,
		prev_id TEXT,
		next_id TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (board_id) REFERENCES boards(id) ON DELETE CASCADE,
		FOREIGN KEY (prev_id) REFERENCES columns(id) ON DELETE SET NULL,
		FOREIGN KEY (next_id) REFERENCES columns(id) ON DELETE SET NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_columns_board ON columns(board_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_columns_prev ON columns(prev_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_columns_next ON columns(next_id)`,
	`CREATE TABLE IF NOT EXISTS cards (
		id TEXT PRIMARY KEY,
		column_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		prev_id TEXT,
		next_id TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (column_id) REFERENCES columns(id) ON DELETE CASCADE,
		FOREIGN KEY (prev_id) REFERENCES cards(id) ON DELETE SET NULL,
		FOREIGN KEY (next_id) REFERENCES cards(id) ON DELETE SET NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cards_column ON cards(column_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_cards_prev ON cards(prev_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_cards_next ON cards(next_id)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		card_id TEXT NOT NULL,
		author_id TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (card_id) REFERENCES cards(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_card ON comments(card_id)`,
	`CREATE TABLE IF NOT EXISTS attachments (
		id TEXT PRIMARY KEY,
		card_id TEXT NOT NULL,
		file_name TEXT NOT NULL,
		FOREIGN KEY (card_id) REFERENCES cards(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attachments_card ON attachments(card_id)`,
}

// runMigrations creates the database schema.
func runMigrations(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

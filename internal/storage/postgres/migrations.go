package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// runMigrations sets up the schema on startup. Mirrors the SQLite schema;
// the partial unique index enforces one filled slot per user per group while
// allowing reserved (empty) slots.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at BIGINT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS groups (
			id TEXT PRIMARY KEY,
			leader_id TEXT NOT NULL REFERENCES users(id),
			total_amount DOUBLE PRECISION NOT NULL,
			capacity INTEGER NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			share_code TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			created_at BIGINT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS group_members (
			id TEXT PRIMARY KEY,
			seq BIGSERIAL,
			group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL DEFAULT '',
			amount DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL,
			created_at BIGINT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS payment_cards (
			id TEXT PRIMARY KEY,
			group_id TEXT NOT NULL REFERENCES groups(id),
			card_number TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL,
			created_at BIGINT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			sender_id TEXT NOT NULL REFERENCES users(id),
			receiver_id TEXT NOT NULL REFERENCES users(id),
			amount DOUBLE PRECISION NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_at BIGINT NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_members_group_user
			ON group_members(group_id, user_id) WHERE user_id != '';
		CREATE INDEX IF NOT EXISTS idx_members_group_id ON group_members(group_id);
		CREATE INDEX IF NOT EXISTS idx_cards_group_id ON payment_cards(group_id);
	`)
	return err
}

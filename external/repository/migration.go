package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresMigrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE session_status AS ENUM ('running', 'completed'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id UUID PRIMARY KEY,
		language1 TEXT NOT NULL,
		language2 TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		status session_status NOT NULL DEFAULT 'running',
		message_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS dialogue_messages (
		id UUID PRIMARY KEY,
		session_id UUID NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		speaker TEXT NOT NULL,
		language TEXT NOT NULL,
		target_language TEXT NOT NULL,
		original_text TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		spoken_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(session_id, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_dialogue_messages_session ON dialogue_messages (session_id, seq)`,
}

var sqliteMigrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		language1 TEXT NOT NULL,
		language2 TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		status TEXT NOT NULL DEFAULT 'running',
		message_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS dialogue_messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		speaker TEXT NOT NULL,
		language TEXT NOT NULL,
		target_language TEXT NOT NULL,
		original_text TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		confidence REAL NOT NULL,
		spoken_at TEXT NOT NULL,
		UNIQUE(session_id, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_dialogue_messages_session ON dialogue_messages (session_id, seq)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range postgresMigrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func RunSQLiteMigration(ctx context.Context, db *sql.DB) error {
	for _, s := range sqliteMigrationStatements {
		if _, err := db.ExecContext(ctx, strings.TrimSpace(s)); err != nil {
			return err
		}
	}
	return nil
}

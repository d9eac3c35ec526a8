package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

func NewDB(dbPath string) (*DB, error) {
	err := os.MkdirAll(filepath.Dir(dbPath), 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

func (db *DB) Migrate() error {
	slog.Info("Running database migrations")

	migrations := []string{
		createUsersTable,
		createVoiceNoteUsageTable,
		createDeletedUsersTable,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration %d: %w", i+1, err)
		}
	}

	slog.Info("Database migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	telegram_id INTEGER PRIMARY KEY,
	username TEXT NOT NULL,
	typefully_api_key TEXT,
	openai_api_key TEXT,
	rewrite_enabled BOOLEAN NOT NULL DEFAULT false,
	created_at INTEGER NOT NULL
);`

const createVoiceNoteUsageTable = `
CREATE TABLE IF NOT EXISTS voice_note_usage (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	telegram_id INTEGER NOT NULL,
	duration_seconds INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);`

const createDeletedUsersTable = `
CREATE TABLE IF NOT EXISTS deleted_users (
	telegram_id INTEGER PRIMARY KEY,
	total_usage_seconds INTEGER NOT NULL,
	deleted_at INTEGER NOT NULL
);`

// Package store provides storage backends for RoomGrabber.
//
// This file implements an SQLite-backed store for conversation state,
// receipts, and responses.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/roomgrabber/roomgrabber/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database
// directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetConversationState(conversationID string) (*models.ConversationState, error) {
	var stackJSON string
	state := models.ConversationState{ConversationID: conversationID}
	err := s.db.QueryRow(
		`SELECT stack, created_at, updated_at FROM conversation_states WHERE conversation_id = ?`,
		conversationID,
	).Scan(&stackJSON, &state.CreatedAt, &state.UpdatedAt)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetConversationState: no state", "conversation_id", conversationID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetConversationState failed", "error", err, "conversation_id", conversationID)
		return nil, fmt.Errorf("failed to query conversation state for %s: %w", conversationID, err)
	}
	if err := json.Unmarshal([]byte(stackJSON), &state.Stack); err != nil {
		slog.Error("SQLiteStore GetConversationState unmarshal failed", "error", err, "conversation_id", conversationID)
		return nil, fmt.Errorf("failed to decode dialog stack for %s: %w", conversationID, err)
	}
	return &state, nil
}

func (s *SQLiteStore) SaveConversationState(state models.ConversationState) error {
	stackJSON, err := json.Marshal(state.Stack)
	if err != nil {
		slog.Error("SQLiteStore SaveConversationState marshal failed", "error", err, "conversation_id", state.ConversationID)
		return fmt.Errorf("failed to encode dialog stack for %s: %w", state.ConversationID, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO conversation_states (conversation_id, stack, created_at, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		 ON CONFLICT(conversation_id) DO UPDATE SET stack = excluded.stack, updated_at = CURRENT_TIMESTAMP`,
		state.ConversationID, string(stackJSON),
	)
	if err != nil {
		slog.Error("SQLiteStore SaveConversationState failed", "error", err, "conversation_id", state.ConversationID)
		return fmt.Errorf("failed to save conversation state for %s: %w", state.ConversationID, err)
	}
	slog.Debug("SQLiteStore SaveConversationState succeeded", "conversation_id", state.ConversationID, "stack_depth", len(state.Stack))
	return nil
}

func (s *SQLiteStore) DeleteConversationState(conversationID string) error {
	_, err := s.db.Exec(`DELETE FROM conversation_states WHERE conversation_id = ?`, conversationID)
	if err != nil {
		slog.Error("SQLiteStore DeleteConversationState failed", "error", err, "conversation_id", conversationID)
		return fmt.Errorf("failed to delete conversation state for %s: %w", conversationID, err)
	}
	return nil
}

func (s *SQLiteStore) AddReceipt(r models.Receipt) error {
	_, err := s.db.Exec(`INSERT INTO receipts (recipient, status, time) VALUES (?, ?, ?)`, r.To, r.Status, r.Time)
	if err != nil {
		slog.Error("SQLiteStore AddReceipt failed", "error", err, "to", r.To)
		return fmt.Errorf("failed to insert receipt for %s: %w", r.To, err)
	}
	slog.Debug("SQLiteStore AddReceipt succeeded", "to", r.To, "status", r.Status)
	return nil
}

func (s *SQLiteStore) AddResponse(r models.Response) error {
	_, err := s.db.Exec(`INSERT INTO responses (sender, body, time) VALUES (?, ?, ?)`, r.From, r.Body, r.Time)
	if err != nil {
		slog.Error("SQLiteStore AddResponse failed", "error", err, "from", r.From)
		return fmt.Errorf("failed to insert response from %s: %w", r.From, err)
	}
	slog.Debug("SQLiteStore AddResponse succeeded", "from", r.From)
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

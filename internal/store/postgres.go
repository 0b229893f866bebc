// Package store provides storage backends for RoomGrabber.
//
// This file implements a PostgreSQL-backed store for conversation state,
// receipts, and responses.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/roomgrabber/roomgrabber/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run Postgres migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) GetConversationState(conversationID string) (*models.ConversationState, error) {
	var stackJSON []byte
	state := models.ConversationState{ConversationID: conversationID}
	err := s.db.QueryRow(
		`SELECT stack, created_at, updated_at FROM conversation_states WHERE conversation_id = $1`,
		conversationID,
	).Scan(&stackJSON, &state.CreatedAt, &state.UpdatedAt)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetConversationState: no state", "conversation_id", conversationID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetConversationState failed", "error", err, "conversation_id", conversationID)
		return nil, fmt.Errorf("failed to query conversation state for %s: %w", conversationID, err)
	}
	if err := json.Unmarshal(stackJSON, &state.Stack); err != nil {
		slog.Error("PostgresStore GetConversationState unmarshal failed", "error", err, "conversation_id", conversationID)
		return nil, fmt.Errorf("failed to decode dialog stack for %s: %w", conversationID, err)
	}
	return &state, nil
}

func (s *PostgresStore) SaveConversationState(state models.ConversationState) error {
	stackJSON, err := json.Marshal(state.Stack)
	if err != nil {
		slog.Error("PostgresStore SaveConversationState marshal failed", "error", err, "conversation_id", state.ConversationID)
		return fmt.Errorf("failed to encode dialog stack for %s: %w", state.ConversationID, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO conversation_states (conversation_id, stack, created_at, updated_at)
		 VALUES ($1, $2, now(), now())
		 ON CONFLICT (conversation_id) DO UPDATE SET stack = EXCLUDED.stack, updated_at = now()`,
		state.ConversationID, stackJSON,
	)
	if err != nil {
		slog.Error("PostgresStore SaveConversationState failed", "error", err, "conversation_id", state.ConversationID)
		return fmt.Errorf("failed to save conversation state for %s: %w", state.ConversationID, err)
	}
	slog.Debug("PostgresStore SaveConversationState succeeded", "conversation_id", state.ConversationID, "stack_depth", len(state.Stack))
	return nil
}

func (s *PostgresStore) DeleteConversationState(conversationID string) error {
	_, err := s.db.Exec(`DELETE FROM conversation_states WHERE conversation_id = $1`, conversationID)
	if err != nil {
		slog.Error("PostgresStore DeleteConversationState failed", "error", err, "conversation_id", conversationID)
		return fmt.Errorf("failed to delete conversation state for %s: %w", conversationID, err)
	}
	return nil
}

func (s *PostgresStore) AddReceipt(r models.Receipt) error {
	_, err := s.db.Exec(`INSERT INTO receipts (recipient, status, time) VALUES ($1, $2, $3)`, r.To, r.Status, r.Time)
	if err != nil {
		slog.Error("PostgresStore AddReceipt failed", "error", err, "to", r.To)
		return fmt.Errorf("failed to insert receipt for %s: %w", r.To, err)
	}
	return nil
}

func (s *PostgresStore) AddResponse(r models.Response) error {
	_, err := s.db.Exec(`INSERT INTO responses (sender, body, time) VALUES ($1, $2, $3)`, r.From, r.Body, r.Time)
	if err != nil {
		slog.Error("PostgresStore AddResponse failed", "error", err, "from", r.From)
		return fmt.Errorf("failed to insert response from %s: %w", r.From, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

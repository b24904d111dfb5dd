// Package sqlite provides a SQLite-backed turn store using raw SQL.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/aupherehq/recall/pkg/conversation"
	"github.com/aupherehq/recall/pkg/storage"
)

// Driver implements storage.TurnStore on SQLite via the
// github.com/mattn/go-sqlite3 driver (registered as "sqlite3").
type Driver struct {
	db *sql.DB
}

// NewDriver opens (or creates) the database at dbPath and migrates the
// schema. dbPath can be a file path or ":memory:".
func NewDriver(dbPath string) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	d := &Driver{db: db}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return d, nil
}

// migrate creates the necessary tables if they don't exist.
// Schema changes are append-only: new columns and indexes only.
func (d *Driver) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		query TEXT NOT NULL,
		query_language TEXT NOT NULL DEFAULT 'es',
		response TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		confidence REAL NOT NULL DEFAULT 0,
		entities TEXT NOT NULL DEFAULT '[]',
		metadata TEXT NOT NULL DEFAULT '{"kind":"none"}',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_turns_session_created ON turns(session_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_turns_user_created ON turns(user_id, created_at);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Append persists a turn. Missing identifiers and timestamps are assigned
// here so callers can hand over a bare turn.
func (d *Driver) Append(ctx context.Context, turn *conversation.Turn) (string, error) {
	if err := turn.Validate(); err != nil {
		return "", &storage.StorageError{Op: "append", Err: err}
	}

	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	entitiesJSON, err := json.Marshal(turn.Entities)
	if err != nil {
		return "", &storage.StorageError{Op: "append", Err: fmt.Errorf("marshal entities: %w", err)}
	}

	metadataJSON, err := json.Marshal(turn.Metadata)
	if err != nil {
		return "", &storage.StorageError{Op: "append", Err: fmt.Errorf("marshal metadata: %w", err)}
	}

	query := `INSERT INTO turns
		(id, session_id, user_id, query, query_language, response, label, confidence, entities, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = d.db.ExecContext(ctx, query,
		turn.ID, turn.SessionID, turn.UserID,
		turn.Query, turn.QueryLanguage, turn.Response,
		turn.Label, turn.Confidence,
		string(entitiesJSON), string(metadataJSON),
		turn.CreatedAt,
	)
	if err != nil {
		return "", &storage.StorageError{Op: "append", Err: err}
	}

	return turn.ID, nil
}

// RecentForSession returns up to limit most recent turns for the session,
// oldest-first.
func (d *Driver) RecentForSession(ctx context.Context, sessionID string, limit int) ([]*conversation.Turn, error) {
	query := `SELECT id, session_id, user_id, query, query_language, response, label, confidence, entities, metadata, created_at
		FROM turns WHERE session_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := d.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, &storage.StorageError{Op: "recent_for_session", Err: err}
	}
	defer rows.Close()

	turns, err := scanTurns(rows)
	if err != nil {
		return nil, &storage.StorageError{Op: "recent_for_session", Err: err}
	}

	// Reverse for oldest-first order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	return turns, nil
}

// RecentForUser returns up to limit most recent turns for the user across
// sessions, newest-first. A zero since applies no time filter.
func (d *Driver) RecentForUser(ctx context.Context, userID string, limit int, since time.Time) ([]*conversation.Turn, error) {
	query := `SELECT id, session_id, user_id, query, query_language, response, label, confidence, entities, metadata, created_at
		FROM turns WHERE user_id = ?`
	args := []any{userID}

	if !since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, since)
	}

	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &storage.StorageError{Op: "recent_for_user", Err: err}
	}
	defer rows.Close()

	turns, err := scanTurns(rows)
	if err != nil {
		return nil, &storage.StorageError{Op: "recent_for_user", Err: err}
	}

	return turns, nil
}

// Sessions lists the user's sessions, most recently active first.
func (d *Driver) Sessions(ctx context.Context, userID string, limit int) ([]conversation.Session, error) {
	query := `SELECT session_id, COUNT(*), MAX(created_at)
		FROM turns WHERE user_id = ?
		GROUP BY session_id
		ORDER BY MAX(created_at) DESC LIMIT ?`

	rows, err := d.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, &storage.StorageError{Op: "sessions", Err: err}
	}
	defer rows.Close()

	var sessions []conversation.Session
	for rows.Next() {
		s := conversation.Session{UserID: userID}
		// MAX() strips the column's declared type, so the driver hands the
		// timestamp back as text.
		var lastTurn string
		if err := rows.Scan(&s.SessionID, &s.TurnCount, &lastTurn); err != nil {
			return nil, &storage.StorageError{Op: "sessions", Err: err}
		}
		s.LastTurnAt, err = parseStoredTime(lastTurn)
		if err != nil {
			return nil, &storage.StorageError{Op: "sessions", Err: err}
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &storage.StorageError{Op: "sessions", Err: err}
	}

	return sessions, nil
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	return d.db.Close()
}

// parseStoredTime decodes the textual timestamps go-sqlite3 writes for
// time.Time arguments.
func parseStoredTime(value string) (time.Time, error) {
	layouts := []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}

func scanTurns(rows *sql.Rows) ([]*conversation.Turn, error) {
	var turns []*conversation.Turn

	for rows.Next() {
		var turn conversation.Turn
		var entitiesJSON, metadataJSON string

		err := rows.Scan(
			&turn.ID, &turn.SessionID, &turn.UserID,
			&turn.Query, &turn.QueryLanguage, &turn.Response,
			&turn.Label, &turn.Confidence,
			&entitiesJSON, &metadataJSON,
			&turn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}

		if err := json.Unmarshal([]byte(entitiesJSON), &turn.Entities); err != nil {
			return nil, fmt.Errorf("unmarshal entities for turn %s: %w", turn.ID, err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &turn.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata for turn %s: %w", turn.ID, err)
		}

		turns = append(turns, &turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	return turns, nil
}

package sessionmemory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is the durable transcript backend, using a bounded
// per-process connection pool.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func Open(dsn string, maxOpenConns int) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if maxOpenConns <= 0 {
		maxOpenConns = 10
	}
	db.SetMaxOpenConns(maxOpenConns)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Ping reports whether the session memory database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS turn_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turn_records_session ON turn_records(session_id, id)`)
	if err != nil {
		return fmt.Errorf("sessionmemory migrate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, rec TurnRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turn_records (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		rec.SessionID, string(rec.Role), rec.Content, rec.CreatedAt)
	return err
}

func (s *SQLiteStore) Read(ctx context.Context, sessionID string, limit int) ([]TurnRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, role, content, created_at FROM (
			SELECT session_id, role, content, created_at FROM turn_records
			WHERE session_id = ? ORDER BY id DESC LIMIT ?
		) ORDER BY created_at ASC`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TurnRecord
	for rows.Next() {
		var rec TurnRecord
		var role string
		if err := rows.Scan(&rec.SessionID, &role, &rec.Content, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Role = Role(role)
		out = append(out, rec)
	}
	return out, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ashureev/leadrelay/internal/domain"
	"github.com/ashureev/leadrelay/internal/shared"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

const defaultListLimit = 50

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	entropyMu sync.Mutex
	entropy   *rand.Rand
}

// Ensure SQLiteStore implements Repository.
var _ Repository = (*SQLiteStore)(nil)

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		title TEXT NOT NULL,
		stage TEXT NOT NULL,
		contact TEXT,
		delivered INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_session ON alerts(session_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_alerts_created ON alerts(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) newID(t time.Time) string {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// RecordAlert stores an alert. Writes that hit SQLITE_BUSY are retried with
// exponential backoff.
func (s *SQLiteStore) RecordAlert(ctx context.Context, rec *domain.AlertRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.ID == "" {
		rec.ID = s.newID(rec.CreatedAt)
	}

	query := `
	INSERT INTO alerts (id, session_id, title, stage, contact, delivered, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	var contactValue interface{}
	if rec.Contact != "" {
		contactValue = rec.Contact
	}

	return withBusyRetry(ctx, "record alert", func() error {
		_, err := s.db.ExecContext(ctx, query,
			rec.ID, rec.SessionID, rec.Title, string(rec.Stage),
			contactValue, rec.Delivered, rec.CreatedAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("insert alert: %w", err)
		}
		return nil
	})
}

// ListAlerts returns alerts newest first.
func (s *SQLiteStore) ListAlerts(ctx context.Context, p ListParams) ([]*domain.AlertRecord, error) {
	if p.Limit <= 0 {
		p.Limit = defaultListLimit
	}

	query := `
		SELECT id, session_id, title, stage, contact, delivered, created_at
		FROM alerts`
	var args []interface{}
	if p.SessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, p.SessionID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, p.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close alert rows", "error", closeErr)
		}
	}()

	var records []*domain.AlertRecord
	for rows.Next() {
		var rec domain.AlertRecord
		var stage string
		var contactValue sql.NullString
		var createdAt int64

		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.Title, &stage,
			&contactValue, &rec.Delivered, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}

		rec.Stage = domain.Stage(stage)
		rec.Contact = contactValue.String
		rec.CreatedAt = time.UnixMilli(createdAt)
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}

	return records, nil
}

// DeleteAlertsBefore removes alerts created before cutoff.
func (s *SQLiteStore) DeleteAlertsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := withBusyRetry(ctx, "delete alerts", func() error {
		result, err := s.db.ExecContext(ctx, `DELETE FROM alerts WHERE created_at < ?`, cutoff.UnixMilli())
		if err != nil {
			return fmt.Errorf("delete alerts: %w", err)
		}
		deleted, err = result.RowsAffected()
		return err
	})
	return deleted, err
}

// withBusyRetry runs op, retrying SQLite lock conflicts with exponential backoff.
func withBusyRetry(ctx context.Context, name string, op func() error) error {
	maxRetries := 3
	baseDelay := 50 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = op()
		conflict := shared.ClassifySQLiteConflict(err)
		if !conflict.Retryable() {
			return err
		}
		if i == maxRetries-1 {
			break
		}

		delay := baseDelay * time.Duration(1<<i) // 50ms, 100ms
		slog.Debug("Alert ledger write conflict, retrying", "op", name, "conflict", conflict, "attempt", i+1, "delay", delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("%s after %d attempts: %w", name, maxRetries, err)
}

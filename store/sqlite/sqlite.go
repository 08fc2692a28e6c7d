/*
Package sqlite provides a SQLite-backed notification log.

PURPOSE:
  Implements forecast.NotificationLog on a single SQLite table. Used when the
  deployment wants the low-stock history queryable alongside other tools
  rather than as a flat CSV file.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on the notifications table
  - No DELETE statements on the notifications table
  - Insertion order is the autoincrement id

KEY TABLES:
  notifications: timestamp, material_id, present_stock, safety_stock

INDEXES:
  - idx_notifications_material: Per-material history

CONCURRENCY:
  Uses sync.RWMutex around writes. The connection pool is capped at one so
  that ":memory:" databases are shared by every query.

USAGE:
  store, err := sqlite.New("./data/notifications.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  notifier := forecast.NewNotifier(store)

SEE ALSO:
  - forecast/notify.go: Interface definition
  - store/csvlog/csvlog.go: CSV implementation (default)
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/accountrms/forecasting/forecast"
)

// Store implements forecast.NotificationLog using SQLite.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, &forecast.IOFailure{Op: "open", Path: dbPath, Err: err}
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, path: dbPath}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, &forecast.IOFailure{Op: "migrate", Path: dbPath, Err: err}
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Low-stock notifications (append-only)
	CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		material_id TEXT NOT NULL,
		present_stock TEXT NOT NULL,
		safety_stock TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_material
		ON notifications(material_id, id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// NOTIFICATION LOG (forecast.NotificationLog interface)
// =============================================================================

// Append adds one record. Identical records are stored again.
func (s *Store) Append(ctx context.Context, rec forecast.NotificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO notifications (timestamp, material_id, present_stock, safety_stock)
		VALUES (?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
		string(rec.MaterialID),
		decimal.NewFromFloat(rec.PresentStock).String(),
		decimal.NewFromFloat(rec.SafetyStock).String(),
	)
	if err != nil {
		return &forecast.IOFailure{Op: "append", Path: s.path, Err: err}
	}
	return nil
}

// List returns every record in insertion order.
func (s *Store) List(ctx context.Context) ([]forecast.NotificationRecord, error) {
	return s.query(ctx, `
		SELECT timestamp, material_id, present_stock, safety_stock
		FROM notifications ORDER BY id
	`)
}

// ListByMaterial returns the history of one material in insertion order.
func (s *Store) ListByMaterial(ctx context.Context, material forecast.MaterialID) ([]forecast.NotificationRecord, error) {
	return s.query(ctx, `
		SELECT timestamp, material_id, present_stock, safety_stock
		FROM notifications WHERE material_id = ? ORDER BY id
	`, string(material))
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]forecast.NotificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &forecast.IOFailure{Op: "list", Path: s.path, Err: err}
	}
	defer rows.Close()

	var result []forecast.NotificationRecord
	for rows.Next() {
		rec, err := scanNotification(rows)
		if err != nil {
			return nil, &forecast.IOFailure{Op: "list", Path: s.path, Err: err}
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &forecast.IOFailure{Op: "list", Path: s.path, Err: err}
	}
	return result, nil
}

func scanNotification(rows *sql.Rows) (forecast.NotificationRecord, error) {
	var (
		ts, material, present, safety string
	)
	if err := rows.Scan(&ts, &material, &present, &safety); err != nil {
		return forecast.NotificationRecord{}, err
	}

	at, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return forecast.NotificationRecord{}, fmt.Errorf("parse timestamp %q: %w", ts, err)
	}
	p, err := decimal.NewFromString(present)
	if err != nil {
		return forecast.NotificationRecord{}, fmt.Errorf("parse present_stock %q: %w", present, err)
	}
	sf, err := decimal.NewFromString(safety)
	if err != nil {
		return forecast.NotificationRecord{}, fmt.Errorf("parse safety_stock %q: %w", safety, err)
	}

	return forecast.NotificationRecord{
		Timestamp:    at,
		MaterialID:   forecast.MaterialID(material),
		PresentStock: p.InexactFloat64(),
		SafetyStock:  sf.InexactFloat64(),
	}, nil
}

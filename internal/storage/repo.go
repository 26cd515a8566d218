// Package storage persists small string values in a single key/value table.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/zjoart/kenshicollection/pkg/logger"
)

var ErrNotFound = errors.New("not found")

// KV is the key-value capability the ownership ledger persists through.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SQLStore keeps values in a kv_slots table on sqlite3 or mysql.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and ensures the table exists.
func Open(driver, dsn string) (*SQLStore, error) {
	switch driver {
	case "sqlite3":
		dsn = sqliteDSN(dsn)
	case "mysql":
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == "sqlite3" {
		// Each :memory: connection is its own database.
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, driver: driver}
	if err := s.EnsureTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const sqliteParams = "_journal_mode=WAL&_busy_timeout=5000"

// sqliteDSN appends the WAL and busy-timeout parameters, keeping any query the DSN already has.
func sqliteDSN(dsn string) string {
	if dsn == ":memory:" {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqliteParams
	}
	return dsn + "?" + sqliteParams
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// EnsureTables creates the kv_slots table when needed.
func (s *SQLStore) EnsureTables() error {
	logger.Info("repo: EnsureTables start")
	create := `
    CREATE TABLE IF NOT EXISTS kv_slots (
        slot_key VARCHAR(128) PRIMARY KEY,
        slot_value TEXT NOT NULL,
        updated_at DATETIME NOT NULL
    );`
	if _, err := s.db.Exec(create); err != nil {
		logger.Error("repo: create kv_slots table failed", logger.WithError(err))
		return fmt.Errorf("create kv_slots: %w", err)
	}
	logger.Info("repo: EnsureTables complete")
	return nil
}

// DropTables removes the kv_slots table.
func (s *SQLStore) DropTables() error {
	if _, err := s.db.Exec(`DROP TABLE IF EXISTS kv_slots;`); err != nil {
		logger.Error("repo: drop kv_slots table failed", logger.WithError(err))
		return err
	}
	return nil
}

// Get returns ErrNotFound when the slot is absent.
func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT slot_value FROM kv_slots WHERE slot_key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		logger.Debug("repo: Get not found", logger.Fields{"key": key})
		return "", ErrNotFound
	}
	if err != nil {
		logger.Error("repo: Get failed", logger.Fields{"key": key}, logger.WithError(err))
		return "", err
	}
	return v, nil
}

// Set upserts the slot.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	q := `INSERT INTO kv_slots (slot_key, slot_value, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(slot_key) DO UPDATE SET slot_value = excluded.slot_value, updated_at = excluded.updated_at`
	if s.driver == "mysql" {
		q = `INSERT INTO kv_slots (slot_key, slot_value, updated_at) VALUES (?, ?, ?)
        ON DUPLICATE KEY UPDATE slot_value = VALUES(slot_value), updated_at = VALUES(updated_at)`
	}

	if _, err := s.db.ExecContext(ctx, q, key, value, time.Now().UTC()); err != nil {
		logger.Error("repo: Set failed", logger.Fields{"key": key}, logger.WithError(err))
		return err
	}
	logger.Debug("repo: Set", logger.Fields{"key": key, "bytes": len(value)})
	return nil
}

// Delete removes the slot; deleting an absent slot is not an error.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kv_slots WHERE slot_key = ?`, key)
	if err != nil {
		logger.Error("repo: Delete failed", logger.Fields{"key": key}, logger.WithError(err))
		return err
	}
	n, _ := res.RowsAffected()
	logger.Info("repo: Delete result", logger.Fields{"key": key, "deleted": n > 0})
	return nil
}

// MemoryKV is an in-process KV used by tests and as a fallback when no database is configured.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: map[string]string{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

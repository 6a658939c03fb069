package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const stateFileName = "state.db"

// SQLiteStore is a key/value store that several processes can open at once.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at dbPath.
// Use ":memory:" for a private in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serialises writers in-process.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

// ResolveStatePath returns the database path inside dataDir, defaulting to
// the user config directory for appName.
func ResolveStatePath(appName, dataDir string) (string, error) {
	if dataDir != "" {
		return filepath.Join(dataDir, stateFileName), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, stateFileName), nil
}

func sqliteDSN(dbPath string) string {
	if dbPath == ":memory:" {
		return dbPath
	}
	query := url.Values{}
	query.Add("_pragma", "busy_timeout(5000)")
	query.Add("_pragma", "journal_mode(WAL)")
	return "file:" + dbPath + "?" + query.Encode()
}

func (store *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := store.db.Exec(schema)
	return err
}

// Get returns the value stored under key.
func (store *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := store.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query %s: %w", key, err)
	}
	return value, true, nil
}

// Put writes value under key.
func (store *SQLiteStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := store.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// PutIfAbsent writes value only when key is missing.
func (store *SQLiteStore) PutIfAbsent(ctx context.Context, key string, value []byte) (bool, error) {
	result, err := store.db.ExecContext(ctx,
		"INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO NOTHING",
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", key, err)
	}
	return affectedOne(result)
}

// CompareAndSwap replaces old with value in a single statement.
func (store *SQLiteStore) CompareAndSwap(ctx context.Context, key string, old, value []byte) (bool, error) {
	result, err := store.db.ExecContext(ctx,
		"UPDATE kv SET value = ?, updated_at = ? WHERE key = ? AND value = ?",
		value, time.Now().UnixMilli(), key, old,
	)
	if err != nil {
		return false, fmt.Errorf("swap %s: %w", key, err)
	}
	return affectedOne(result)
}

// Close closes the database connection.
func (store *SQLiteStore) Close() error {
	return store.db.Close()
}

func affectedOne(result sql.Result) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows == 1, nil
}

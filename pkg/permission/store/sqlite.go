package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"cleargate-hq/cleargate/pkg/permission"
)

const sqliteBackendName = "sqlite"

// SQLiteStore is a durable PolicyStore backed by a single SQLite file.
// It uses a write-ahead log for better concurrent read performance and
// serializes writes through a single connection.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// SQLiteStoreConfig configures the SQLite policy store.
type SQLiteStoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteStore opens (creating if necessary) a policy store at dbPath
// with default settings.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteStoreConfig{DBPath: dbPath})
}

// NewSQLiteStoreWithConfig opens a policy store with custom configuration.
func NewSQLiteStoreWithConfig(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, permission.NewStoreError(sqliteBackendName, "open", errors.New("db path cannot be empty"))
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, permission.NewStoreError(sqliteBackendName, "open", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{db: db, dbPath: cfg.DBPath}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, permission.NewStoreError(sqliteBackendName, "init-schema", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS directory_policies (
		directory_id   TEXT PRIMARY KEY,
		directory_path TEXT NOT NULL,
		policy         TEXT NOT NULL,
		created_at     INTEGER NOT NULL,
		updated_at     INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the policy for a directory, or nil if none is set.
func (s *SQLiteStore) Get(ctx context.Context, directoryID string) (*permission.DirectoryPolicy, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT directory_id, directory_path, policy, created_at, updated_at
		FROM directory_policies
		WHERE directory_id = ?
	`, directoryID)

	policy, err := scanPolicy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, permission.NewStoreError(sqliteBackendName, "get", err)
	}
	return policy, nil
}

// Set creates or replaces the policy for a directory.
func (s *SQLiteStore) Set(ctx context.Context, policy *permission.DirectoryPolicy) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO directory_policies (directory_id, directory_path, policy, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (directory_id) DO UPDATE SET
			directory_path = excluded.directory_path,
			policy = excluded.policy,
			updated_at = excluded.updated_at
	`,
		policy.DirectoryID,
		policy.DirectoryPath,
		string(policy.Policy),
		policy.CreatedAt.UnixNano(),
		policy.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return permission.NewStoreError(sqliteBackendName, "set", err)
	}
	return nil
}

// Remove deletes the policy for a directory.
func (s *SQLiteStore) Remove(ctx context.Context, directoryID string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM directory_policies WHERE directory_id = ?
	`, directoryID)
	if err != nil {
		return false, permission.NewStoreError(sqliteBackendName, "remove", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, permission.NewStoreError(sqliteBackendName, "remove", err)
	}
	return affected > 0, nil
}

// List returns all policies ordered by directory ID.
func (s *SQLiteStore) List(ctx context.Context) ([]*permission.DirectoryPolicy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT directory_id, directory_path, policy, created_at, updated_at
		FROM directory_policies
		ORDER BY directory_id ASC
	`)
	if err != nil {
		return nil, permission.NewStoreError(sqliteBackendName, "list", err)
	}
	defer rows.Close()

	var policies []*permission.DirectoryPolicy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, permission.NewStoreError(sqliteBackendName, "list", err)
		}
		policies = append(policies, policy)
	}
	if err := rows.Err(); err != nil {
		return nil, permission.NewStoreError(sqliteBackendName, "list", err)
	}
	return policies, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return permission.NewStoreError(sqliteBackendName, "close", err)
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (*permission.DirectoryPolicy, error) {
	var (
		policy             permission.DirectoryPolicy
		mode               string
		createdAt, updated int64
	)
	if err := row.Scan(&policy.DirectoryID, &policy.DirectoryPath, &mode, &createdAt, &updated); err != nil {
		return nil, err
	}
	policy.Policy = permission.PolicyMode(mode)
	policy.CreatedAt = time.Unix(0, createdAt).UTC()
	policy.UpdatedAt = time.Unix(0, updated).UTC()
	return &policy, nil
}

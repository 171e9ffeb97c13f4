package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConfig contains configuration for the SQLite audit backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite audit backend. It initializes the
// schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite audit storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the database schema and pragmas.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version sql.NullInt64
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version.Valid && version.Int64 != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version.Int64))
	}

	return nil
}

// Append persists a new entry at the end of the log.
func (s *SQLiteStorage) Append(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO audit_log (
			id, file_id, directory_id, destination, provider,
			decision, reason, policy, sensitive_data, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.FileID, entry.DirectoryID, entry.Destination, entry.Provider,
		entry.Decision, entry.Reason, entry.Policy, entry.SensitiveData, entry.Timestamp,
	)
	if err != nil {
		return NewStorageError("sqlite", "append", err)
	}

	return nil
}

// Query returns matching entries in insertion order.
func (s *SQLiteStorage) Query(ctx context.Context, filter Filter) ([]*Entry, error) {
	whereClause, args := buildWhereClause(filter)

	sqlQuery := `SELECT id, file_id, directory_id, destination, provider,
		decision, reason, policy, sensitive_data, timestamp FROM audit_log`
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY seq ASC"
	if filter.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			sqlQuery += " LIMIT -1"
		}
		sqlQuery += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		var entry Entry
		err := rows.Scan(
			&entry.ID, &entry.FileID, &entry.DirectoryID, &entry.Destination, &entry.Provider,
			&entry.Decision, &entry.Reason, &entry.Policy, &entry.SensitiveData, &entry.Timestamp,
		)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}

	return entries, nil
}

// Count returns the number of matching entries.
func (s *SQLiteStorage) Count(ctx context.Context, filter Filter) (int64, error) {
	whereClause, args := buildWhereClause(filter)

	sqlQuery := "SELECT COUNT(*) FROM audit_log"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Delete removes matching entries, oldest first when the filter carries a
// limit, and returns the number removed.
func (s *SQLiteStorage) Delete(ctx context.Context, filter Filter) (int64, error) {
	whereClause, args := buildWhereClause(filter)

	sqlQuery := "DELETE FROM audit_log"
	if filter.Limit > 0 {
		sqlQuery += " WHERE seq IN (SELECT seq FROM audit_log"
		if whereClause != "" {
			sqlQuery += " WHERE " + whereClause
		}
		sqlQuery += fmt.Sprintf(" ORDER BY seq ASC LIMIT %d)", filter.Limit)
	} else if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, NewStorageError("sqlite", "delete", err)
	}

	return count, nil
}

// Close releases the database connection.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return NewStorageError("sqlite", "close", err)
	}
	return nil
}

// buildWhereClause builds a SQL WHERE clause from the filter. Returns the
// clause (without the WHERE keyword) and the query arguments.
func buildWhereClause(filter Filter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.FileID != "" {
		conditions = append(conditions, "file_id = ?")
		args = append(args, filter.FileID)
	}
	if filter.DirectoryID != "" {
		conditions = append(conditions, "directory_id = ?")
		args = append(args, filter.DirectoryID)
	}
	if filter.Destination != "" {
		conditions = append(conditions, "destination = ?")
		args = append(args, filter.Destination)
	}
	if filter.Decision != "" {
		conditions = append(conditions, "decision = ?")
		args = append(args, filter.Decision)
	}
	if filter.Sensitive != nil {
		conditions = append(conditions, "sensitive_data = ?")
		args = append(args, *filter.Sensitive)
	}
	if filter.Before != nil {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, *filter.Before)
	}

	return strings.Join(conditions, " AND "), args
}

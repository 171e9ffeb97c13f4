package audit

// SchemaVersion is the current database schema version. Bump when the
// schema changes in an incompatible way.
const SchemaVersion = 1

// Schema creates the audit tables and indexes. The seq column preserves
// insertion order independently of timestamps.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_log (
	seq            INTEGER PRIMARY KEY AUTOINCREMENT,
	id             TEXT NOT NULL UNIQUE,
	file_id        TEXT NOT NULL,
	directory_id   TEXT NOT NULL,
	destination    TEXT NOT NULL,
	provider       TEXT NOT NULL,
	decision       TEXT NOT NULL,
	reason         TEXT NOT NULL,
	policy         TEXT NOT NULL DEFAULT '',
	sensitive_data INTEGER NOT NULL DEFAULT 0,
	timestamp      TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_file_id      ON audit_log(file_id);
CREATE INDEX IF NOT EXISTS idx_audit_directory_id ON audit_log(directory_id);
CREATE INDEX IF NOT EXISTS idx_audit_decision     ON audit_log(decision);
CREATE INDEX IF NOT EXISTS idx_audit_timestamp    ON audit_log(timestamp);

CREATE TABLE IF NOT EXISTS schema_version (
	version    INTEGER PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// InsertSchemaVersion records the schema version, ignoring duplicates.
const InsertSchemaVersion = `
INSERT OR IGNORE INTO schema_version (version) VALUES (?);
`

// GetSchemaVersion reads the highest applied schema version.
const GetSchemaVersion = `
SELECT MAX(version) FROM schema_version;
`

package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// migration upgrades the schema by exactly one version.
type migration struct {
	version     int
	description string
	up          func(tx *sql.Tx) error
}

// migrations is the ordered, append-only schema history.
// Never edit an applied migration; add a new one.
var migrations = []migration{
	{
		version:     1,
		description: "device-scoped key-value entries",
		up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
			CREATE TABLE IF NOT EXISTS kv_entry (
				scope TEXT NOT NULL,
				key TEXT NOT NULL,
				value TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (scope, key)
			);`)
			return err
		},
	},
	{
		version:     2,
		description: "index for sweeping stale scopes",
		up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_kv_entry_updated_at ON kv_entry(updated_at);`)
			return err
		},
	},
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, or 0 for an unmigrated database.
// PRE: db is a valid database connection
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies all pending migrations, each in its own transaction.
// When dbPath names a file and the database already holds an older schema,
// a VACUUM INTO backup is taken first.
// PRE: db is a valid database connection
// POST: SchemaVersion(db) == LatestSchemaVersion()
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TEXT NOT NULL
	);`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current >= LatestSchemaVersion() {
		return nil
	}

	if current > 0 && isFileDB(dbPath) {
		backup := fmt.Sprintf("%s.v%d.bak", dbPath, current)
		if _, err := db.Exec(`VACUUM INTO ?`, backup); err != nil {
			return fmt.Errorf("failed to back up database before migration: %w", err)
		}
		slog.Info("schema_backup", "path", backup, "from_version", current)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := apply(db, m); err != nil {
			return err
		}
		slog.Info("schema_migrated", "version", m.version, "description", m.description)
	}
	return nil
}

func apply(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", m.version, err)
	}
	if err := m.up(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version, description, applied_at) VALUES (?, ?, ?)`,
		m.version, m.description, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %d: record version: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration %d: commit: %w", m.version, err)
	}
	return nil
}

func isFileDB(path string) bool {
	return path != "" && path != ":memory:" && !strings.HasPrefix(path, "file::memory:")
}

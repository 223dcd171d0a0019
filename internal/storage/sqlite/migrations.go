package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"
)

// schemaVersion is the version fresh databases are created at.
const schemaVersion = 4

// schemaVersionKey is the metadata row recording the applied version.
const schemaVersionKey = "schema_version"

// migration is one additive, idempotent schema step. Steps run in order and
// each records its version before the next begins; a failure is fatal.
type migration struct {
	version int
	name    string
	apply   func(*sql.DB) error
}

var migrations = []migration{
	{2, "projects registry reshape", migrateProjectsRegistry},
	{3, "comments table", migrateCommentsTable},
	{4, "project uuid column", migrateProjectUUIDColumn},
}

// RunMigrations creates the schema if absent and brings an existing database
// up to schemaVersion. Safe to call on every open.
func RunMigrations(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	current, err := storedSchemaVersion(db)
	if err != nil {
		return err
	}
	if current == 0 {
		// Fresh database: the schema above is already at the latest shape,
		// except the uuid index which older databases cannot create.
		if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_projects_uuid ON projects(uuid)"); err != nil {
			return err
		}
		if err := setSchemaVersion(db, schemaVersion); err != nil {
			return err
		}
		return nil
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := m.apply(db); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if err := setSchemaVersion(db, m.version); err != nil {
			return err
		}
		current = m.version
	}
	return nil
}

func storedSchemaVersion(db *sql.DB) (int, error) {
	var value string
	err := db.QueryRow("SELECT value FROM metadata WHERE key = ?", schemaVersionKey).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("malformed schema version %q: %w", value, err)
	}
	return v, nil
}

func setSchemaVersion(db *sql.DB, v int) error {
	_, err := db.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)",
		schemaVersionKey, strconv.Itoa(v),
	)
	if err != nil {
		return fmt.Errorf("recording schema version %d: %w", v, err)
	}
	return nil
}

// tableHasColumn reports whether the named column exists, via PRAGMA
// table_info. Rows are fully drained before returning so a follow-up Exec
// does not deadlock on a single-connection pool.
func tableHasColumn(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to check schema: %w", err)
	}
	defer func() { _ = rows.Close() }()

	found := false
	for rows.Next() {
		var cid int
		var name, typ string
		var notnull, pk int
		var dflt *string
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("failed to scan column info: %w", err)
		}
		if name == column {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("error reading column info: %w", err)
	}
	return found, rows.Close()
}

// migrateProjectsRegistry reshapes the v1 projects table
// (name PK, path UNIQUE) into the handle-keyed registry
// (id PK, name, current_path). Local-only projects keep their path as id
// until a later sync rewrites it to a remote handle.
func migrateProjectsRegistry(db *sql.DB) error {
	hasID, err := tableHasColumn(db, "projects", "id")
	if err != nil {
		return err
	}
	hasPath, err := tableHasColumn(db, "projects", "path")
	if err != nil {
		return err
	}
	if hasID || !hasPath {
		return nil // already migrated or fresh schema
	}

	_, err = db.Exec(`
		ALTER TABLE projects RENAME TO projects_old;
		CREATE TABLE projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			current_path TEXT NOT NULL
		);
		INSERT INTO projects (id, name, current_path)
		SELECT path, name, path FROM projects_old;
		DROP TABLE projects_old;
	`)
	return err
}

// migrateCommentsTable adds the comments table; CREATE IF NOT EXISTS makes
// it a no-op when the table is already present.
func migrateCommentsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			issue_id TEXT NOT NULL,
			content TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'user',
			created_at DATETIME NOT NULL,
			FOREIGN KEY (issue_id) REFERENCES issues(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_comments_issue ON comments(issue_id);
	`)
	return err
}

// migrateProjectUUIDColumn adds the nullable uuid column and its index for
// UUID-keyed project lookups.
func migrateProjectUUIDColumn(db *sql.DB) error {
	hasUUID, err := tableHasColumn(db, "projects", "uuid")
	if err != nil {
		return err
	}
	if !hasUUID {
		if _, err := db.Exec(`ALTER TABLE projects ADD COLUMN uuid TEXT`); err != nil {
			return fmt.Errorf("failed to add uuid column: %w", err)
		}
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_projects_uuid ON projects(uuid)`)
	return err
}

package sqlite

// schema is the current (fully migrated) database layout. Fresh databases
// are created directly at schemaVersion; existing databases reach the same
// shape through the migration chain in migrations.go.
const schema = `
-- Issues: work items across all projects
CREATE TABLE IF NOT EXISTS issues (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'open',
    priority INTEGER NOT NULL DEFAULT 2 CHECK(priority >= 0 AND priority <= 4),
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    closed_at DATETIME,
    CHECK (status IN ('open', 'in_progress', 'closed', 'blocked'))
);

-- Projects: registry mapping stable handles to names and current locations
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,           -- canonical remote URL or absolute path
    name TEXT NOT NULL,
    current_path TEXT NOT NULL,
    uuid TEXT                      -- stable UUID from .trace/id (NULL until adopted)
);

-- Dependencies: typed edges between issues
CREATE TABLE IF NOT EXISTS dependencies (
    issue_id TEXT NOT NULL,
    depends_on_id TEXT NOT NULL,
    type TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    PRIMARY KEY (issue_id, depends_on_id),
    FOREIGN KEY (issue_id) REFERENCES issues(id) ON DELETE CASCADE,
    FOREIGN KEY (depends_on_id) REFERENCES issues(id) ON DELETE CASCADE,
    CHECK (type IN ('parent', 'blocks', 'related'))
);

-- Comments: append-only annotations on issues
CREATE TABLE IF NOT EXISTS comments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    issue_id TEXT NOT NULL,
    content TEXT NOT NULL,
    source TEXT NOT NULL DEFAULT 'user',
    created_at DATETIME NOT NULL,
    FOREIGN KEY (issue_id) REFERENCES issues(id) ON DELETE CASCADE
);

-- Metadata: system state (schema version, per-handle last sync times)
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_issues_project ON issues(project_id);
CREATE INDEX IF NOT EXISTS idx_issues_status ON issues(status);
CREATE INDEX IF NOT EXISTS idx_issues_priority ON issues(priority);
CREATE INDEX IF NOT EXISTS idx_deps_issue ON dependencies(issue_id);
CREATE INDEX IF NOT EXISTS idx_deps_depends ON dependencies(depends_on_id);
CREATE INDEX IF NOT EXISTS idx_comments_issue ON comments(issue_id);
-- NOTE: idx_projects_uuid is created by the uuid migration (or on fresh
-- init), because v1-v3 databases do not have the uuid column yet.
`

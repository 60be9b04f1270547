package db

import "database/sql"

// schemaVersion is bumped whenever the statements below change in a way
// that requires existing databases to be migrated. There is only one
// version today; EnsureSchema is idempotent (every statement uses
// IF NOT EXISTS) so re-running it against an up-to-date database is a
// no-op.
const schemaVersion = 1

// EnsureSchema creates every table, index, and trigger the storage
// layer depends on if they do not already exist, and records the
// current schemaVersion in schema_migrations.
func EnsureSchema(conn *sql.DB) error {
	stmts := []string{
		schemaMigrationsTable,
		projectsTable,
		featuresTable,
		tasksTable,
		sectionsTable,
		tagsTable,
		dependenciesTable,
		roleTransitionsTable,
	}

	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			return err
		}
	}

	return recordSchemaVersion(conn)
}

func recordSchemaVersion(conn *sql.DB) error {
	_, err := conn.Exec(
		`INSERT OR IGNORE INTO schema_migrations (version, applied_at) VALUES (?, CURRENT_TIMESTAMP)`,
		schemaVersion,
	)
	return err
}

const schemaMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const projectsTable = `
CREATE TABLE IF NOT EXISTS projects (
    id            TEXT PRIMARY KEY,
    key           TEXT NOT NULL UNIQUE,
    name          TEXT NOT NULL,
    description   TEXT,
    summary       TEXT,
    status        TEXT NOT NULL,
    search_vector TEXT NOT NULL DEFAULT '',
    version       INTEGER NOT NULL DEFAULT 1,
    created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status);

CREATE TRIGGER IF NOT EXISTS projects_updated_at
AFTER UPDATE ON projects
FOR EACH ROW WHEN NEW.updated_at = OLD.updated_at
BEGIN
    UPDATE projects SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
END;`

const featuresTable = `
CREATE TABLE IF NOT EXISTS features (
    id            TEXT PRIMARY KEY,
    project_id    TEXT,
    key           TEXT NOT NULL UNIQUE,
    name          TEXT NOT NULL,
    summary       TEXT,
    status        TEXT NOT NULL,
    priority      TEXT NOT NULL DEFAULT 'MEDIUM' CHECK (priority IN ('HIGH', 'MEDIUM', 'LOW')),
    search_vector TEXT NOT NULL DEFAULT '',
    version       INTEGER NOT NULL DEFAULT 1,
    created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,

    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE SET NULL
);
CREATE INDEX IF NOT EXISTS idx_features_project_id ON features(project_id);
CREATE INDEX IF NOT EXISTS idx_features_status ON features(status);
CREATE INDEX IF NOT EXISTS idx_features_priority ON features(priority);

CREATE TRIGGER IF NOT EXISTS features_updated_at
AFTER UPDATE ON features
FOR EACH ROW WHEN NEW.updated_at = OLD.updated_at
BEGIN
    UPDATE features SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
END;`

const tasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
    id            TEXT PRIMARY KEY,
    feature_id    TEXT,
    project_id    TEXT,
    title         TEXT NOT NULL,
    summary       TEXT,
    status        TEXT NOT NULL,
    priority      TEXT NOT NULL DEFAULT 'MEDIUM' CHECK (priority IN ('HIGH', 'MEDIUM', 'LOW')),
    complexity    INTEGER NOT NULL DEFAULT 5 CHECK (complexity >= 1 AND complexity <= 10),
    search_vector TEXT NOT NULL DEFAULT '',
    version       INTEGER NOT NULL DEFAULT 1,
    created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,

    FOREIGN KEY (feature_id) REFERENCES features(id) ON DELETE CASCADE,
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_tasks_feature_id ON tasks(feature_id);
CREATE INDEX IF NOT EXISTS idx_tasks_project_id ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks(priority);
CREATE INDEX IF NOT EXISTS idx_tasks_status_priority ON tasks(status, priority);

CREATE TRIGGER IF NOT EXISTS tasks_updated_at
AFTER UPDATE ON tasks
FOR EACH ROW WHEN NEW.updated_at = OLD.updated_at
BEGIN
    UPDATE tasks SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
END;`

const sectionsTable = `
CREATE TABLE IF NOT EXISTS sections (
    id                TEXT PRIMARY KEY,
    entity_type       TEXT NOT NULL CHECK (entity_type IN ('project', 'feature', 'task')),
    entity_id         TEXT NOT NULL,
    title             TEXT NOT NULL,
    usage_description TEXT,
    content           TEXT,
    content_format    TEXT NOT NULL DEFAULT 'markdown' CHECK (content_format IN ('markdown', 'plain', 'json')),
    ordinal           INTEGER NOT NULL DEFAULT 0,
    version           INTEGER NOT NULL DEFAULT 1,
    created_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,

    UNIQUE (entity_type, entity_id, ordinal)
);
CREATE INDEX IF NOT EXISTS idx_sections_entity ON sections(entity_type, entity_id);

CREATE TRIGGER IF NOT EXISTS sections_updated_at
AFTER UPDATE ON sections
FOR EACH ROW WHEN NEW.updated_at = OLD.updated_at
BEGIN
    UPDATE sections SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
END;`

// tags is a single polymorphic (entity_type, entity_id, tag) table,
// matching the shape used for sections above instead of a separate
// join table per parent type.
const tagsTable = `
CREATE TABLE IF NOT EXISTS tags (
    entity_type TEXT NOT NULL CHECK (entity_type IN ('project', 'feature', 'task')),
    entity_id   TEXT NOT NULL,
    tag         TEXT NOT NULL,
    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,

    PRIMARY KEY (entity_type, entity_id, tag)
);
CREATE INDEX IF NOT EXISTS idx_tags_tag ON tags(tag);`

const dependenciesTable = `
CREATE TABLE IF NOT EXISTS dependencies (
    id           TEXT PRIMARY KEY,
    from_task_id TEXT NOT NULL,
    to_task_id   TEXT NOT NULL,
    type         TEXT NOT NULL CHECK (type IN ('BLOCKS', 'RELATES_TO', 'IS_BLOCKED_BY')),
    unblock_at   TEXT,
    created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,

    FOREIGN KEY (from_task_id) REFERENCES tasks(id) ON DELETE CASCADE,
    FOREIGN KEY (to_task_id) REFERENCES tasks(id) ON DELETE CASCADE,
    UNIQUE (from_task_id, to_task_id, type)
);
CREATE INDEX IF NOT EXISTS idx_dependencies_from ON dependencies(from_task_id);
CREATE INDEX IF NOT EXISTS idx_dependencies_to ON dependencies(to_task_id);
CREATE INDEX IF NOT EXISTS idx_dependencies_type ON dependencies(type);`

const roleTransitionsTable = `
CREATE TABLE IF NOT EXISTS role_transitions (
    id          TEXT PRIMARY KEY,
    entity_id   TEXT NOT NULL,
    entity_type TEXT NOT NULL CHECK (entity_type IN ('project', 'feature', 'task')),
    from_role   TEXT,
    to_role     TEXT NOT NULL,
    from_status TEXT,
    to_status   TEXT NOT NULL,
    trigger     TEXT NOT NULL,
    timestamp   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_role_transitions_entity ON role_transitions(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_role_transitions_timestamp ON role_transitions(timestamp DESC);`

package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

// InitDB opens the board database and creates the schema. Writes are
// serialized through a single connection, so every transaction in this
// package runs exclusively.
func InitDB(driver, dbPath string, busyTimeoutMs int) (*sql.DB, error) {
	if driver == "" {
		driver = DriverModernc
	}
	if busyTimeoutMs <= 0 {
		busyTimeoutMs = 5000
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("Error trying to create DB directory: %w", err)
		}
	}

	dsn, err := buildDSN(driver, dbPath, busyTimeoutMs)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("Error trying to open DB: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("Error trying to connect: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func buildDSN(driver, dbPath string, busyTimeoutMs int) (string, error) {
	switch driver {
	case DriverModernc:
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", dbPath, busyTimeoutMs), nil
	case DriverMattn:
		return fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", dbPath, busyTimeoutMs), nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

func createTables(db *sql.DB) error {
	schema := `
    CREATE TABLE IF NOT EXISTS projects (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        archived_at DATETIME,
        created_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS columns (
        id TEXT PRIMARY KEY,
        project_id TEXT NOT NULL,
        name TEXT NOT NULL,
        position INTEGER NOT NULL DEFAULT 0,
        capacity INTEGER CHECK (capacity IS NULL OR capacity > 0),
        occupancy INTEGER NOT NULL DEFAULT 0 CHECK (occupancy >= 0),
        FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS tasks (
        id TEXT PRIMARY KEY,
        project_id TEXT NOT NULL,
        title TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        status TEXT NOT NULL,
        column_id TEXT NOT NULL,
        assignee_id TEXT,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL,
        FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
        FOREIGN KEY (column_id) REFERENCES columns(id)
    );

    CREATE TABLE IF NOT EXISTS task_dependencies (
        task_id TEXT NOT NULL,
        blocker_id TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        PRIMARY KEY (task_id, blocker_id),
        FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE,
        FOREIGN KEY (blocker_id) REFERENCES tasks(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS task_transitions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        task_id TEXT NOT NULL,
        from_column_id TEXT NOT NULL,
        to_column_id TEXT NOT NULL,
        status TEXT NOT NULL,
        actor TEXT NOT NULL DEFAULT '',
        forced INTEGER NOT NULL DEFAULT 0,
        created_at DATETIME NOT NULL,
        FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_columns_project ON columns(project_id, position);
    CREATE INDEX IF NOT EXISTS idx_tasks_column ON tasks(column_id);
    CREATE INDEX IF NOT EXISTS idx_dependencies_blocker ON task_dependencies(blocker_id);
    CREATE INDEX IF NOT EXISTS idx_transitions_task ON task_transitions(task_id);
    `

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("Error trying to create tables: %w", err)
	}
	return nil
}

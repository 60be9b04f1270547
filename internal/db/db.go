package db

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// InitDB opens (creating if necessary) the SQLite database at filepath,
// applies production PRAGMA tuning, and ensures the schema is current.
func InitDB(filepath string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", filepath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := configureSQLite(conn); err != nil {
		return nil, fmt.Errorf("failed to configure SQLite: %w", err)
	}

	if err := EnsureSchema(conn); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return conn, nil
}

// configureSQLite sets SQLite PRAGMA settings the storage layer's
// concurrency model depends on.
func configureSQLite(conn *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA cache_size = -64000;",
		"PRAGMA temp_store = MEMORY;",
		"PRAGMA mmap_size = 30000000000;",
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	var fkEnabled int
	if err := conn.QueryRow("PRAGMA foreign_keys;").Scan(&fkEnabled); err != nil {
		return fmt.Errorf("failed to verify foreign_keys: %w", err)
	}
	if fkEnabled != 1 {
		return fmt.Errorf("foreign_keys not enabled")
	}

	return nil
}

// CheckIntegrity runs PRAGMA integrity_check on the database.
func CheckIntegrity(conn *sql.DB) error {
	var result string
	if err := conn.QueryRow("PRAGMA integrity_check;").Scan(&result); err != nil {
		return fmt.Errorf("failed to run integrity_check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database integrity check failed: %s", result)
	}
	return nil
}

// BackupDatabase creates a timestamped backup of the database file and
// its WAL/SHM siblings. Returns the backup file path.
func BackupDatabase(dbPath string) (string, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return "", fmt.Errorf("database file does not exist: %s", dbPath)
	}

	timestamp := time.Now().Format("20060102_150405")
	dir := filepath.Dir(dbPath)
	baseName := filepath.Base(dbPath)
	ext := filepath.Ext(baseName)
	nameWithoutExt := baseName[:len(baseName)-len(ext)]
	backupPath := filepath.Join(dir, fmt.Sprintf("%s_%s_backup%s", nameWithoutExt, timestamp, ext))

	if err := copyFile(dbPath, backupPath); err != nil {
		return "", fmt.Errorf("failed to backup database: %w", err)
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		walFile := dbPath + suffix
		if _, err := os.Stat(walFile); err == nil {
			if err := copyFile(walFile, backupPath+suffix); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to backup WAL file %s: %v\n", walFile, err)
			}
		}
	}

	return backupPath, nil
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}

	return destFile.Sync()
}

// EnsureDir creates the parent directory of path if it does not exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}

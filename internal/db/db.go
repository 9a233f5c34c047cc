package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"eve-refinery/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database holding the item catalog, price table,
// reprocessing yields, blueprints, and the input-quantity cache.
type DB struct {
	sql *sql.DB
}

func dbPath() string {
	if p := os.Getenv("REFINERY_DB"); p != "" {
		return p
	}
	// Prefer working directory so the DB is stable across go run / go build.
	// Fall back to executable directory for deployed builds.
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "refinery.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "refinery.db")
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open() (*DB, error) {
	path := dbPath()
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Try to read current version
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS items (
				type_id     INTEGER PRIMARY KEY,
				type_name   TEXT NOT NULL,
				group_id    INTEGER NOT NULL DEFAULT 0,
				category_id INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_items_name ON items(type_name);
			CREATE INDEX IF NOT EXISTS idx_items_group ON items(group_id);

			CREATE TABLE IF NOT EXISTS prices (
				type_id    INTEGER PRIMARY KEY,
				buy_max    REAL NOT NULL DEFAULT 0,
				sell_min   REAL NOT NULL DEFAULT 0,
				updated_at TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS reprocessing_outputs (
				item_type_id     INTEGER NOT NULL,
				material_type_id INTEGER NOT NULL,
				quantity         REAL NOT NULL,
				PRIMARY KEY (item_type_id, material_type_id)
			);
			CREATE INDEX IF NOT EXISTS idx_reproc_item ON reprocessing_outputs(item_type_id);

			CREATE TABLE IF NOT EXISTS blueprints (
				blueprint_type_id INTEGER PRIMARY KEY,
				product_type_id   INTEGER NOT NULL,
				output_quantity   INTEGER NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_blueprints_product ON blueprints(product_type_id);

			CREATE TABLE IF NOT EXISTS input_quantity_cache (
				type_id        INTEGER PRIMARY KEY,
				input_quantity INTEGER NOT NULL,
				source         TEXT NOT NULL,
				needs_review   INTEGER NOT NULL DEFAULT 0,
				resolved_at    TEXT NOT NULL
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS manufacturing_materials (
				blueprint_type_id INTEGER NOT NULL,
				material_type_id  INTEGER NOT NULL,
				quantity          REAL NOT NULL,
				PRIMARY KEY (blueprint_type_id, material_type_id)
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		logger.Info("DB", "Applied migration v2 (manufacturing materials)")
	}

	return nil
}

// SqlDB returns the underlying *sql.DB for use by other packages.
func (d *DB) SqlDB() *sql.DB {
	return d.sql
}

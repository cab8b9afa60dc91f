package database

import (
	"database/sql"
	"fmt"

	"linguadrill/internal/config"
)

type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

func (d *SQLiteDialect) DSN(cfg *config.Config) string {
	return cfg.DatabasePath
}

func (d *SQLiteDialect) RewriteQuery(query string) string {
	// SQLite understands ? placeholders natively.
	return query
}

func (d *SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("applying %s: %w", pragma, err)
		}
	}

	// A single writer keeps SQLite happy under concurrent handlers.
	db.SetMaxOpenConns(1)
	return nil
}

func (d *SQLiteDialect) MigrationsSubdir() string {
	return "sqlite"
}

func (d *SQLiteDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL UNIQUE,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
}

func (d *SQLiteDialect) UpsertStatisticsQuery() string {
	return `INSERT INTO statistics (user_id, item_id, correct, wrong)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			correct = statistics.correct + excluded.correct,
			wrong = statistics.wrong + excluded.wrong,
			updated_at = CURRENT_TIMESTAMP`
}

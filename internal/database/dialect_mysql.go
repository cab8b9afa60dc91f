package database

import (
	"database/sql"
	"time"

	"linguadrill/internal/config"
)

type MySQLDialect struct{}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

func (d *MySQLDialect) DSN(cfg *config.Config) string {
	return cfg.DatabaseURL
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	// MySQL uses ? placeholders natively.
	return query
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	if _, err := db.Exec("SET SESSION sql_mode = 'STRICT_ALL_TABLES'"); err != nil {
		return err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return nil
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS migrations (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		filename VARCHAR(255) NOT NULL UNIQUE,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
}

func (d *MySQLDialect) UpsertStatisticsQuery() string {
	return `INSERT INTO statistics (user_id, item_id, correct, wrong)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			correct = correct + VALUES(correct),
			wrong = wrong + VALUES(wrong),
			updated_at = CURRENT_TIMESTAMP`
}

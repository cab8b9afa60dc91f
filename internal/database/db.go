package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"linguadrill/internal/config"
)

// DB wraps sql.DB with the active dialect so queries can be written once
// with ? placeholders and rewritten per engine.
type DB struct {
	*sql.DB
	dialect Dialect
}

// Open connects to the configured database, applies per-engine connection
// settings, and runs any pending migrations.
func Open(cfg *config.Config) (*DB, error) {
	dialect, err := NewDialect(cfg.DatabaseType)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(dialect.DriverName(), dialect.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := dialect.ConfigureConnection(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("configuring connection: %w", err)
	}

	db := &DB{DB: sqlDB, dialect: dialect}

	if err := db.runMigrations(cfg.MigrationsPath); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	log.Printf("Connected to %s database", cfg.DatabaseType)
	return db, nil
}

// Dialect returns the active dialect.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Query rewrites placeholders and runs the query.
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.DB.Query(db.dialect.RewriteQuery(query), args...)
}

// QueryRow rewrites placeholders and runs the single-row query.
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRow(db.dialect.RewriteQuery(query), args...)
}

// Exec rewrites placeholders and executes the statement.
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.DB.Exec(db.dialect.RewriteQuery(query), args...)
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error or panic. Queries issued through the Tx get the same
// placeholder rewriting as the DB itself.
func (db *DB) WithTx(fn func(tx *Tx) error) error {
	sqlTx, err := db.DB.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	tx := &Tx{Tx: sqlTx, dialect: db.dialect}
	defer func() {
		if p := recover(); p != nil {
			sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		sqlTx.Rollback()
		return err
	}
	return sqlTx.Commit()
}

// Tx wraps sql.Tx with the dialect's placeholder rewriting.
type Tx struct {
	*sql.Tx
	dialect Dialect
}

func (tx *Tx) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return tx.Tx.Query(tx.dialect.RewriteQuery(query), args...)
}

func (tx *Tx) QueryRow(query string, args ...interface{}) *sql.Row {
	return tx.Tx.QueryRow(tx.dialect.RewriteQuery(query), args...)
}

func (tx *Tx) Exec(query string, args ...interface{}) (sql.Result, error) {
	return tx.Tx.Exec(tx.dialect.RewriteQuery(query), args...)
}

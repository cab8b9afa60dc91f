package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
)

// runMigrations applies every .sql file from the dialect's migrations
// directory that has not been recorded in the migrations table yet.
// Files run in lexical order, so they are named with numeric prefixes.
func (db *DB) runMigrations(migrationsPath string) error {
	if _, err := db.DB.Exec(db.dialect.CreateMigrationsTableQuery()); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	dir := filepath.Join(migrationsPath, db.dialect.MigrationsSubdir())
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("listing migrations in %s: %w", dir, err)
	}
	sort.Strings(files)

	applied, err := db.appliedMigrations()
	if err != nil {
		return err
	}

	for _, file := range files {
		name := filepath.Base(file)
		if applied[name] {
			continue
		}

		contents, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := db.DB.Exec(string(contents)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}

		if _, err := db.Exec("INSERT INTO migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}

		log.Printf("Applied migration %s", name)
	}

	return nil
}

func (db *DB) appliedMigrations() (map[string]bool, error) {
	rows, err := db.DB.Query("SELECT filename FROM migrations")
	if err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

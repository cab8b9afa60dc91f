package database

import (
	"database/sql"
	"fmt"
	"strings"

	"linguadrill/internal/config"
)

// Dialect abstracts the differences between the supported SQL engines so
// the repositories can be written once against ? placeholders.
type Dialect interface {
	// DriverName returns the database/sql driver to open.
	DriverName() string

	// DSN builds the connection string from the loaded configuration.
	DSN(cfg *config.Config) string

	// RewriteQuery converts a query written with ? placeholders into the
	// placeholder style the engine expects.
	RewriteQuery(query string) string

	// ConfigureConnection applies per-engine session settings and pool
	// limits right after the connection is opened.
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir names the directory under the migrations path that
	// holds this engine's schema files.
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the DDL for the applied-migrations
	// bookkeeping table.
	CreateMigrationsTableQuery() string

	// UpsertStatisticsQuery returns the insert-or-increment statement for
	// the per-user, per-item statistics counters.
	UpsertStatisticsQuery() string
}

// NewDialect maps a configured database type to its dialect.
func NewDialect(databaseType string) (Dialect, error) {
	switch strings.ToLower(databaseType) {
	case "sqlite", "sqlite3":
		return &SQLiteDialect{}, nil
	case "postgres", "postgresql":
		return &PostgresDialect{}, nil
	case "mysql":
		return &MySQLDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", databaseType)
	}
}

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, ...
// while leaving question marks inside string literals alone.
func rewritePlaceholdersToNumbered(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inString := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '\'':
			// A doubled quote inside a literal is an escaped quote.
			if inString && i+1 < len(query) && query[i+1] == '\'' {
				b.WriteByte(ch)
				b.WriteByte(query[i+1])
				i++
				continue
			}
			inString = !inString
			b.WriteByte(ch)
		case ch == '?' && !inString:
			n++
			fmt.Fprintf(&b, "$%d", n)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/rl1809/food-inventory/internal/core/domain"
)

type sqliteDialect struct{}

func (sqliteDialect) name() string { return "sqlite" }

func (sqliteDialect) placeholder(int) string { return "?" }

func (sqliteDialect) upsertClause() string {
	return "ON CONFLICT (name, type) DO UPDATE SET quantity_in_grams = excluded.quantity_in_grams"
}

func (sqliteDialect) schema() []string {
	return []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name VARCHAR(%d) NOT NULL,
			quantity_in_grams INTEGER NOT NULL CHECK (quantity_in_grams >= 0),
			type VARCHAR(%d) NOT NULL CHECK (length(type) <= %d)
		)`, foodTable, domain.MaxNameLength, domain.MaxTypeLength, domain.MaxTypeLength),
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_food_name_type ON food (name, type)`,
		`CREATE INDEX IF NOT EXISTS idx_food_name ON food (name)`,
		`CREATE INDEX IF NOT EXISTS idx_food_type ON food (type)`,
	}
}

func (sqliteDialect) classify(err error) domain.PersistenceCause {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return domain.CauseUnknown
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		return domain.CauseConstraint
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return domain.CauseLockTimeout
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR, sqlite3.SQLITE_NOTADB:
		return domain.CauseConnection
	}
	return domain.CauseUnknown
}

// openSQLite keeps a single long-lived connection: SQLite allows one writer
// and an in-memory database lives only as long as its connection.
func openSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	return db, nil
}

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/rl1809/food-inventory/internal/core/domain"
)

const postgresConnectTimeout = 5 * time.Second

type postgresDialect struct{}

func (postgresDialect) name() string { return "postgres" }

func (postgresDialect) placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (postgresDialect) upsertClause() string {
	return "ON CONFLICT (name, type) DO UPDATE SET quantity_in_grams = EXCLUDED.quantity_in_grams"
}

func (postgresDialect) schema() []string {
	return []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(%d) NOT NULL,
			quantity_in_grams INTEGER NOT NULL CHECK (quantity_in_grams >= 0),
			type VARCHAR(%d) NOT NULL
		)`, foodTable, domain.MaxNameLength, domain.MaxTypeLength),
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_food_name_type ON food (name, type)`,
		`CREATE INDEX IF NOT EXISTS idx_food_name ON food (name)`,
		`CREATE INDEX IF NOT EXISTS idx_food_type ON food (type)`,
	}
}

func (postgresDialect) classify(err error) domain.PersistenceCause {
	var ce *pgconn.ConnectError
	if errors.As(err, &ce) {
		return domain.CauseConnection
	}
	var pe *pgconn.PgError
	if !errors.As(err, &pe) {
		return domain.CauseUnknown
	}
	switch {
	case pe.Code == "40P01":
		return domain.CauseDeadlock
	case pe.Code == "55P03":
		return domain.CauseLockTimeout
	case pe.Code == "57014":
		return domain.CauseCanceled
	case strings.HasPrefix(pe.Code, "23"):
		return domain.CauseConstraint
	case strings.HasPrefix(pe.Code, "08"):
		return domain.CauseConnection
	}
	return domain.CauseUnknown
}

func openPostgres(dsn string) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = postgresConnectTimeout
	}
	return stdlib.OpenDB(*cfg), nil
}

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/food-inventory/internal/core/domain"
)

const (
	mysqlDialTimeout = 5 * time.Second
	mysqlIOTimeout   = 30 * time.Second
)

// MySQL error numbers the adapter distinguishes.
const (
	mysqlErrDupEntry        = 1062
	mysqlErrBadNull         = 1048
	mysqlErrDataTooLong     = 1406
	mysqlErrOutOfRange      = 1264
	mysqlErrNoReferencedRow = 1452
	mysqlErrCheckViolated   = 3819
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

type mysqlDialect struct{}

func (mysqlDialect) name() string { return "mysql" }

func (mysqlDialect) placeholder(int) string { return "?" }

func (mysqlDialect) upsertClause() string {
	return "ON DUPLICATE KEY UPDATE quantity_in_grams = VALUES(quantity_in_grams)"
}

func (mysqlDialect) schema() []string {
	return []string{fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INT AUTO_INCREMENT NOT NULL,
			name VARCHAR(%d) NOT NULL,
			quantity_in_grams INT NOT NULL,
			type VARCHAR(%d) NOT NULL,
			PRIMARY KEY (id),
			UNIQUE INDEX idx_food_name_type (name, type),
			INDEX idx_food_name (name),
			INDEX idx_food_type (type),
			CONSTRAINT chk_food_quantity CHECK (quantity_in_grams >= 0)
		) DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci ENGINE = InnoDB`,
		foodTable, domain.MaxNameLength, domain.MaxTypeLength)}
}

func (mysqlDialect) classify(err error) domain.PersistenceCause {
	if errors.Is(err, mysql.ErrInvalidConn) {
		return domain.CauseConnection
	}
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return domain.CauseUnknown
	}
	switch me.Number {
	case mysqlErrDeadlock:
		return domain.CauseDeadlock
	case mysqlErrLockWaitTimeout:
		return domain.CauseLockTimeout
	case mysqlErrDupEntry, mysqlErrBadNull, mysqlErrDataTooLong, mysqlErrOutOfRange,
		mysqlErrNoReferencedRow, mysqlErrCheckViolated:
		return domain.CauseConstraint
	}
	return domain.CauseUnknown
}

// openMySQL applies client-side dial and IO timeouts unless the DSN sets them.
func openMySQL(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = mysqlDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = mysqlIOTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = mysqlIOTimeout
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	return sql.OpenDB(connector), nil
}

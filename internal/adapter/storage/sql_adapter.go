package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rl1809/food-inventory/internal/core/domain"
)

// upsertChunkSize caps rows per INSERT statement; a batch larger than this is
// written as several statements in the same transaction.
const upsertChunkSize = 500

// likeEscape is the LIKE escape character used for name filters.
const likeEscape = '!'

type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SQLAdapter stores foods in a relational table through database/sql.
type SQLAdapter struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
}

func NewMySQLAdapter(db *sql.DB, logger *slog.Logger) *SQLAdapter {
	return &SQLAdapter{db: db, dialect: mysqlDialect{}, logger: logger}
}

func NewSQLiteAdapter(db *sql.DB, logger *slog.Logger) *SQLAdapter {
	return &SQLAdapter{db: db, dialect: sqliteDialect{}, logger: logger}
}

func NewPostgresAdapter(db *sql.DB, logger *slog.Logger) *SQLAdapter {
	return &SQLAdapter{db: db, dialect: postgresDialect{}, logger: logger}
}

// Open connects to the database named by opts.Driver (mysql, sqlite or
// postgres) and verifies the connection.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*SQLAdapter, error) {
	var (
		db      *sql.DB
		err     error
		adapter func(*sql.DB, *slog.Logger) *SQLAdapter
	)
	switch strings.ToLower(opts.Driver) {
	case "mysql":
		db, err = openMySQL(opts.DSN)
		adapter = NewMySQLAdapter
	case "sqlite", "sqlite3":
		db, err = openSQLite(opts.DSN)
		adapter = NewSQLiteAdapter
	case "postgres", "postgresql", "pgx":
		db, err = openPostgres(opts.DSN)
		adapter = NewPostgresAdapter
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	a := adapter(db, logger)
	if a.dialect.name() != "sqlite" {
		if opts.MaxOpenConns > 0 {
			db.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			db.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(opts.ConnMaxLifetime)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, persistenceError(a.dialect, "ping "+a.dialect.name(), err)
	}
	return a, nil
}

// Migrate creates the food table and its indexes if they do not exist.
func (a *SQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range a.dialect.schema() {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return persistenceError(a.dialect, "migrate", err)
		}
	}
	return nil
}

// UpsertBatch writes foods in a single transaction. Rows sharing a natural key
// keep their quantity from the last occurrence. Once started the transaction is
// not interrupted by cancellation of ctx.
func (a *SQLAdapter) UpsertBatch(ctx context.Context, foods []domain.Food) error {
	if len(foods) == 0 {
		return nil
	}
	ctx = context.WithoutCancel(ctx)
	rows := dedupeLastWins(foods)

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return persistenceError(a.dialect, "begin tx", err)
	}
	defer tx.Rollback()

	for start := 0; start < len(rows); start += upsertChunkSize {
		chunk := rows[start:min(start+upsertChunkSize, len(rows))]
		query, args := a.upsertStatement(chunk)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return persistenceError(a.dialect, "upsert foods", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return persistenceError(a.dialect, "commit tx", err)
	}
	return nil
}

func (a *SQLAdapter) upsertStatement(foods []domain.Food) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(foods)*3)

	b.WriteString("INSERT INTO " + foodTable + " (name, type, quantity_in_grams) VALUES ")
	for i, f := range foods {
		if i > 0 {
			b.WriteString(", ")
		}
		n := len(args)
		fmt.Fprintf(&b, "(%s, %s, %s)",
			a.dialect.placeholder(n+1), a.dialect.placeholder(n+2), a.dialect.placeholder(n+3))
		args = append(args, f.Name(), f.Type().String(), f.QuantityGrams())
	}
	b.WriteString(" ")
	b.WriteString(a.dialect.upsertClause())
	return b.String(), args
}

// FindByType lists foods of one type. A non-empty nameFilter restricts the
// result to names containing it, compared with the database's LOWER().
// Rows that no longer map to a valid food are logged and skipped.
func (a *SQLAdapter) FindByType(ctx context.Context, foodType domain.FoodType, nameFilter string) ([]domain.Food, error) {
	query := "SELECT name, type, quantity_in_grams FROM " + foodTable + " WHERE type = " + a.dialect.placeholder(1)
	args := []any{foodType.String()}
	if nameFilter != "" {
		query += fmt.Sprintf(" AND LOWER(name) LIKE LOWER(%s) ESCAPE '%c'", a.dialect.placeholder(2), likeEscape)
		args = append(args, "%"+escapeLike(nameFilter)+"%")
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistenceError(a.dialect, "query foods", err)
	}
	defer rows.Close()

	foods := make([]domain.Food, 0)
	for rows.Next() {
		var (
			name, typ string
			grams     int64
		)
		if err := rows.Scan(&name, &typ, &grams); err != nil {
			return nil, persistenceError(a.dialect, "scan food", err)
		}
		food, err := domain.NewFood(name, grams, domain.FoodType(typ))
		if err != nil {
			a.logger.ErrorContext(ctx, "skipping unmappable food row",
				slog.String("name", name), slog.String("type", typ), slog.Any("error", err))
			continue
		}
		foods = append(foods, food)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError(a.dialect, "iterate foods", err)
	}
	return foods, nil
}

// Remove deletes a food by natural key.
func (a *SQLAdapter) Remove(ctx context.Context, key domain.FoodKey) (bool, error) {
	result, err := a.db.ExecContext(ctx,
		"DELETE FROM "+foodTable+" WHERE name = "+a.dialect.placeholder(1)+" AND type = "+a.dialect.placeholder(2),
		key.Name, key.Type.String(),
	)
	if err != nil {
		return false, persistenceError(a.dialect, "delete food", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, persistenceError(a.dialect, "delete food", err)
	}
	return n > 0, nil
}

func (a *SQLAdapter) Ping(ctx context.Context) error {
	return persistenceError(a.dialect, "ping", a.db.PingContext(ctx))
}

func (a *SQLAdapter) Close() error {
	return a.db.Close()
}

// DB exposes the underlying pool, e.g. for fixtures.
func (a *SQLAdapter) DB() *sql.DB {
	return a.db
}

func dedupeLastWins(foods []domain.Food) []domain.Food {
	index := make(map[domain.FoodKey]int, len(foods))
	out := make([]domain.Food, 0, len(foods))
	for _, f := range foods {
		if i, ok := index[f.Key()]; ok {
			out[i] = f
			continue
		}
		index[f.Key()] = len(out)
		out = append(out, f)
	}
	return out
}

func escapeLike(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == likeEscape || r == '%' || r == '_' {
			b.WriteRune(likeEscape)
		}
		b.WriteRune(r)
	}
	return b.String()
}

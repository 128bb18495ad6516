package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/rl1809/food-inventory/internal/core/domain"
)

const foodTable = "food"

// dialect captures what differs between the supported databases.
type dialect interface {
	name() string
	// placeholder returns the bind marker for the n-th (1-based) argument.
	placeholder(n int) string
	// upsertClause follows a multi-row INSERT and overwrites quantity_in_grams
	// on a (name, type) conflict.
	upsertClause() string
	schema() []string
	classify(err error) domain.PersistenceCause
}

func persistenceError(d dialect, op string, err error) error {
	if err == nil {
		return nil
	}
	return &domain.PersistenceError{Op: op, Cause: classify(d, err), Err: err}
}

func classify(d dialect, err error) domain.PersistenceCause {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.CauseCanceled
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone):
		return domain.CauseConnection
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.CauseConnection
	}
	return d.classify(err)
}

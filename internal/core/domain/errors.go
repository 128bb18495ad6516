package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidType = errors.New("invalid food type")
	ErrInvalidUnit = errors.New("invalid unit")
	// ErrUnknownType marks a type that slipped past validation. It is a defect,
	// not a user error.
	ErrUnknownType = errors.New("unknown food type")
)

type PersistenceCause string

const (
	CauseConnection  PersistenceCause = "connection"
	CauseConstraint  PersistenceCause = "constraint"
	CauseDeadlock    PersistenceCause = "deadlock"
	CauseLockTimeout PersistenceCause = "lock_timeout"
	CauseCanceled    PersistenceCause = "canceled"
	CauseUnknown     PersistenceCause = "unknown"
)

// PersistenceError wraps a backing store failure.
type PersistenceError struct {
	Op    string
	Cause PersistenceCause
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Cause, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPersistence reports whether err is (or wraps) a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

package datastore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrConstraintViolation reports a unique name collision.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrReference reports a foreign key pointing at a missing parent.
	ErrReference = errors.New("reference error")
	// ErrInvalidData reports a value the store refused for this record only,
	// such as a NUL byte in a name or a failed NOT NULL or CHECK constraint.
	ErrInvalidData = errors.New("invalid data")
	// ErrNotFound reports a lookup that matched no row.
	ErrNotFound = errors.New("not found")
	// ErrConnection reports a store that is unreachable or in an unknown state.
	ErrConnection = errors.New("connection failure")
)

// SQLSTATE codes and classes the gateway maps onto its own error kinds.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	pgClassDataException      = "22"
	pgClassIntegrityViolation = "23"
)

// OpError describes a failed gateway operation. Kind is one of the sentinel
// errors above so callers can test it with errors.Is.
type OpError struct {
	Op     string
	Record string
	Kind   error
	Err    error
}

func (e *OpError) Error() string {
	if e.Record == "" {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %q: %v: %v", e.Op, e.Record, e.Kind, e.Err)
}

func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// classify wraps err in an OpError carrying the matching kind.
func classify(op string, record string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Record: record, Kind: kindOf(err), Err: err}
}

func kindOf(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrConstraintViolation
		case pgForeignKeyViolation:
			return ErrReference
		}
		if strings.HasPrefix(pgErr.Code, pgClassDataException) || strings.HasPrefix(pgErr.Code, pgClassIntegrityViolation) {
			return ErrInvalidData
		}
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConstraintViolation
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrReference
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	}
	return ErrConnection
}

// IsRecordError reports whether err only concerns the record being written,
// as opposed to the store as a whole.
func IsRecordError(err error) bool {
	return errors.Is(err, ErrConstraintViolation) ||
		errors.Is(err, ErrReference) ||
		errors.Is(err, ErrInvalidData) ||
		errors.Is(err, ErrNotFound)
}

package services

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Classified error kinds returned by the services. Controllers match on
// these with errors.Is to pick the HTTP status.
var (
	// ErrNotFound: the referenced user/book/loan/reservation/fine does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict: a state precondition does not hold (loan already
	// returned, reservation not in the expected status, fine already
	// closed, or a uniqueness constraint was hit by a concurrent writer).
	ErrConflict = errors.New("conflicting state")

	// ErrCapacityExceeded: no free copy or slot at validation time.
	ErrCapacityExceeded = errors.New("no copies available")

	// ErrEngagementLimitExceeded: the user is at the simultaneous
	// loans-plus-reservations cap.
	ErrEngagementLimitExceeded = errors.New("maximum active engagements reached")

	// ErrIneligibleHolder: the user is inactive or blocked by unpaid fines.
	ErrIneligibleHolder = errors.New("user is not eligible")

	// ErrInvalidRequest: malformed input.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTransientConflict: the store detected a concurrent-transaction
	// race; the whole operation is safe to retry.
	ErrTransientConflict = errors.New("transient transaction conflict")
)

// isSerializationFailure reports whether err is the store aborting a
// transaction because of a concurrent one (Postgres 40001/40P01).
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// isUniqueViolation reports whether err is a unique-constraint hit, for
// both the Postgres deployment and the sqlite test databases.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

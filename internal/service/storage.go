package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the engine cares about.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgExclusionViolation   = "23P01"
)

// storageRetries bounds internal retries for reads and for the optimistic
// conflict path of booking creation. Authorization and validation failures
// are never retried.
const storageRetries = 3

// isSerializationConflict reports whether the transaction lost a race and is
// safe to re-run from the top.
func isSerializationConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// isExclusionViolation reports whether the bookings no-overlap constraint
// aborted the insert: a racing writer committed a conflicting range first.
func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgExclusionViolation
	}
	return false
}

// isStorageUnavailable reports whether the store could not be reached within
// the operation's deadline. Class 08 covers connection failures.
func isStorageUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08"
	}
	return false
}

// mapStorageErr hides raw driver errors from callers. Connectivity failures
// and serialization conflicts that outlived their retries both become
// ErrStorageUnavailable; anything else passes through for the caller's
// errors.Is checks.
func mapStorageErr(err error) error {
	if err == nil {
		return nil
	}
	if isStorageUnavailable(err) || isSerializationConflict(err) {
		return ErrStorageUnavailable
	}
	return err
}

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"blood_donation_backend/internals/helpers/apperror"
)

// postgres SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgLockNotAvailable    = "55P03"
	pgSerializationFailed = "40001"
	pgDeadlockDetected    = "40P01"
	pgQueryCanceled       = "57014"
)

// IsTransient reports whether err is a lock wait, deadlock, busy database or
// deadline that may succeed on retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgSerializationFailed, pgDeadlockDetected, pgQueryCanceled:
			return true
		}
	}
	var sqErr *msqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}
	return false
}

// IsUniqueViolation reports a unique-constraint failure from any supported driver.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	var sqErr *msqlite.Error
	if errors.As(err, &sqErr) && sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return false
}

// Classify maps a driver error onto the apperror taxonomy. Errors that are
// already classified pass through; unknown errors are wrapped with the entity.
func Classify(entity string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case IsTransient(err):
		return apperror.RetryableConflict(entity, "operation timed out waiting for a lock, retry", err)
	case IsUniqueViolation(err):
		c := apperror.Conflict(entity, "unique", "duplicate value violates a unique constraint")
		c.Err = err
		return c
	}
	return fmt.Errorf("%s: %w", entity, err)
}

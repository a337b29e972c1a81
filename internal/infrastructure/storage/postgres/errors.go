package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"stockpos/internal/core/apperror"
)

// PostgreSQL error codes that mark a retryable failure.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
)

// translateError maps storage failures onto the application error
// taxonomy. Transient failures (deadlocks, lock and statement timeouts,
// serialization conflicts) become retryable errors; everything already
// typed passes through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperror.NewTransient(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return apperror.NewTransient(err)
		case codeUniqueViolation:
			return apperror.NewConflict("duplicate value violates a unique constraint").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case codeForeignKeyViolation:
			return apperror.NewValidation("referenced record does not exist").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		}
		// statement_timeout surfaces as query_canceled
		if pgErr.Code == "57014" {
			return apperror.NewTransient(err)
		}
	}

	return err
}

// versionConflict reports a failed optimistic-lock update.
func versionConflict(entity string, entityID any) error {
	return apperror.NewConflict("record was modified by another operation").
		WithDetail("entity", entity).
		WithDetail("id", entityID)
}

// notFoundOr translates pgx.ErrNoRows into a typed not found error,
// passing anything else through translateError.
func notFoundOr(err error, entity string, entityID any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NewNotFound(entity, entityID)
	}
	return translateError(err)
}

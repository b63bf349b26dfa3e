package repositories

import (
	"context"
	"errors"
	"fmt"

	apperrors "calibrify/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier - общий знаменатель для *pgxpool.Pool и pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func querierFor(pool *pgxpool.Pool, tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return pool
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNumericOutOfRange   = "22003"
	pgInvalidTextRepr     = "22P02"
)

// mapPgError переводит ошибки драйвера в ошибки приложения.
func mapPgError(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, apperrors.ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: связанная запись не найдена: %w", op, apperrors.ErrNotFound)
		case pgCheckViolation:
			return fmt.Errorf("%s: %w (%s)", op, apperrors.ErrValidation, pgErr.ConstraintName)
		case pgNumericOutOfRange, pgInvalidTextRepr:
			return fmt.Errorf("%s: %w: %s", op, apperrors.ErrValidation, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

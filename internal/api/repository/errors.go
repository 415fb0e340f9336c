package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"titlehub/internal/apperror"
)

// Postgres error codes we care about at the storage boundary.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translate maps storage-level failures into the application taxonomy so
// no raw database error ever crosses the repository boundary. Uniqueness
// lives in the database (not check-then-act), so the unique-violation
// path is the one that carries the conflict invariants.
func translate(err error, resource string, key any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(resource, key)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperror.Conflict(resource + " already exists")
		case pgForeignKeyViolation:
			return apperror.NotFound(resource+" parent", key)
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict(resource + " already exists")
	}
	return err
}

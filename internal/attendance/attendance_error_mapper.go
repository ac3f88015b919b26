package attendance

import (
	"errors"

	attendanceerrors "worksync/internal/attendance/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return attendanceerrors.ErrAlreadyClockedIn
		case pgForeignKeyViolation:
			return attendanceerrors.ErrEmployeeNotFound
		}
	}

	return err
}

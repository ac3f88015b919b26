package leave

import (
	"errors"

	leaveerrors "worksync/internal/leave/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgForeignKeyViolation     = "23503"
	pgInvalidTextRepresention = "22P02"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return leaveerrors.ErrEmployeeNotFound
		case pgInvalidTextRepresention:
			return leaveerrors.ErrInvalidID
		}
	}

	return err
}

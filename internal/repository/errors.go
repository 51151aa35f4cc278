package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/shareit-platform/service-booking/pkg/domain"
)

// translateError maps driver errors onto domain errors. op describes the failed
// operation for wrapped infrastructure errors.
func translateError(err error, op string) error {
	if err == nil {
		return nil
	}

	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ExclusionViolation:
			return domain.NewOverlapError("interval overlaps an approved booking of the same item")
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return domain.NewConflictError("concurrent update, please retry")
		case pgerrcode.UniqueViolation:
			return domain.NewConflictError(pgErr.Detail)
		case pgerrcode.ForeignKeyViolation:
			return domain.NewValidationError(pgErr.Detail)
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.NewConflictError("duplicate key")
	}

	return fmt.Errorf("%s: %w", op, err)
}

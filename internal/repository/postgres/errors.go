package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/DaniAlencarrr/Athletix/pkg/database"
	apperrors "github.com/DaniAlencarrr/Athletix/pkg/errors"
)

// storeError wraps a driver error with op. Connection-class failures become
// TransientStore so callers can answer 503 and clients may retry.
func storeError(op string, err error) error {
	if database.IsConnectionError(err) {
		return apperrors.TransientStore(fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

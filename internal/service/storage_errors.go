package service

import (
	"database/sql"
	"errors"

	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

// lookupError maps a repository error from a single-row lookup.
func lookupError(err error, notFound, failed string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.FromStorage(err, failed)
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

package repository

import (
	"errors"

	"go-inventory-pos/internal/apperr"

	"gorm.io/gorm"
)

// notFoundOr maps a missing row to apperr.NotFound and anything else to a persistence failure
func notFoundOr(err error, entity, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity, "%s not found", what)
	}
	return apperr.Persistence(err, "failed to load %s", what)
}

package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

// translateError maps gorm errors onto repository sentinels so services never
// depend on gorm.
func translateError(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", msg, repositories.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", msg, repositories.ErrAlreadyExists)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

// checkAffected turns a zero-row write into ErrNotFound.
func checkAffected(result *gorm.DB, format string, args ...interface{}) error {
	if result.Error != nil {
		return translateError(result.Error, format, args...)
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, format, args...)
	}
	return nil
}

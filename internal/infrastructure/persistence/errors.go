package persistence

import (
	"errors"
	"strings"

	"github.com/rentledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate holds a row lock until the surrounding transaction ends.
// The sqlite dialect drops the clause; its single connection serializes writers.
var forUpdate = clause.Locking{Strength: "UPDATE"}

// notFoundAs maps gorm.ErrRecordNotFound to the given domain error
func notFoundAs(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// isUniqueViolation reports whether err came from a unique index
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}

// optimisticLockResult turns an update result into the optimistic lock error when no row matched
func optimisticLockResult(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrOptimisticLock
	}
	return nil
}

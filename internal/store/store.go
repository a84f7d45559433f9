// Package store contains the queries that touch more than one row or need
// to run inside a transaction. Simple lookups stay in the handlers.
package store

import (
	"errors"

	"gorm.io/gorm"
)

var ErrRequestNotPending = errors.New("table request is not pending")

// IsDuplicate reports whether err is a unique constraint violation
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrItemNotFound        = errors.New("item not found")
	ErrCartNotFound        = errors.New("cart not found")
	ErrCartExists          = errors.New("cart already exists")
	ErrCartVersionConflict = errors.New("cart was modified concurrently")
)

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

package entity

import "errors"

// Repository errors. Implementations return these (possibly wrapped) so the
// service can tell them apart from infrastructure failures.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

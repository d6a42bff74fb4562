package apperr

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrOutOfOrder = errors.New("reviews must be completed in order")
)

package kmeans

import "errors"

var (
	// ErrInvalidParameters is returned when k, n, d or the iteration bound is out of range.
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrDimensionMismatch is returned when vectors of different dimension are combined.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

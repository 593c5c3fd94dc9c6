package matrix

import "errors"

var (
	// ErrInvalidConfiguration indicates the commission schedule is unusable.
	ErrInvalidConfiguration = errors.New("matrix: invalid commission schedule")

	// ErrInvalidInput indicates a bad downline count or level index.
	ErrInvalidInput = errors.New("matrix: invalid input")
)

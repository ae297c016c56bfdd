package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound          = errors.New("candidate not found")
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

package seed

import "errors"

// Error constants.
var (
	ErrApply = errors.New("seed apply failed")
	ErrProbe = errors.New("match probe failed")
)

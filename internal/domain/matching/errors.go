package matching

import "errors"

// Sentinel causes. They are wrapped with an apperr kind before being returned.
var (
	ErrInvalidCandidateID = errors.New("candidate id must be a positive integer")
	ErrInvalidThreshold   = errors.New("threshold must be a number between 0 and 1")
	ErrInactiveCandidate  = errors.New("candidate account is inactive")
)

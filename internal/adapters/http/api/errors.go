package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest         = errors.New("bad request")
	ErrInvalidCandidateID = errors.New("candidateId must be a positive integer")
	ErrInvalidThreshold   = errors.New("threshold must be a number between 0 and 1")
)

package strategy

import "errors"

// Strategy errors. Use errors.Is to match them, implementations wrap them with
// details.
var (
	// ErrAdmissionRefused is expected and recoverable: the pool is full, try again later
	ErrAdmissionRefused = errors.New("strategy: admission refused")

	// ErrSpawnFailure indicates an unrecoverable launch error
	ErrSpawnFailure = errors.New("strategy: spawn failure")

	// ErrFail indicates a completion check or termination query error
	ErrFail = errors.New("strategy: completion check failed")

	// ErrNoResult is returned when a worker completed but no result is stored
	ErrNoResult = errors.New("strategy: no result")
)

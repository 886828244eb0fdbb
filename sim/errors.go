package sim

import "errors"

var (
	// ErrComputeUnavailable means the platform has no parallel compute path.
	// It is reported once and drives the fallback decision; never retried.
	ErrComputeUnavailable = errors.New("parallel compute unavailable")

	// ErrResourceCreation wraps buffer or pipeline creation failures.
	ErrResourceCreation = errors.New("compute resource creation failed")

	ErrNotInitialized     = errors.New("simulation not initialized")
	ErrAlreadyInitialized = errors.New("simulation already initialized")
	ErrDisposed           = errors.New("simulation disposed")
	ErrInvalidConfig      = errors.New("invalid simulation config")
)

package domain

import "errors"

var (
	// ErrIndexUnavailable signals that the index service cannot be reached or is unhealthy.
	ErrIndexUnavailable = errors.New("index service unavailable")
	// ErrBatchRejected signals that too many documents in one batch were refused.
	ErrBatchRejected = errors.New("batch failure ratio exceeded")
	// ErrRetriesExhausted signals that a bulk submission failed on every attempt.
	ErrRetriesExhausted = errors.New("bulk submission retries exhausted")
	// ErrHybridNotSupported signals that the backend rejected the hybrid query shape.
	ErrHybridNotSupported = errors.New("hybrid query not supported by backend")
	// ErrInvalidQuery signals a query spec that cannot be executed.
	ErrInvalidQuery = errors.New("invalid query")
)

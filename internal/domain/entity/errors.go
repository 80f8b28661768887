package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNetwork is returned when a network id is not in the registry.
	ErrUnknownNetwork = errors.New("unknown network")

	// ErrConnectionFailed matches every ConnectionFailedError.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrConnectionInProgress is returned for a connect issued while another is pending.
	ErrConnectionInProgress = errors.New("connection in progress")

	// ErrAlreadyConnected is returned for a connect issued while connected.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrUnknownConnector is returned by connectors for ids they do not offer.
	ErrUnknownConnector = errors.New("unknown connector")

	// ErrSessionNotFound is returned by the session store for unknown or expired ids.
	ErrSessionNotFound = errors.New("session not found")
)

// ConnectionFailedError carries the human-readable reason a connect did not succeed.
type ConnectionFailedError struct {
	Reason string
	Err    error
}

// NewConnectionFailed wraps err (which may be nil) with a reason.
func NewConnectionFailed(reason string, err error) *ConnectionFailedError {
	return &ConnectionFailedError{Reason: reason, Err: err}
}

func (e *ConnectionFailedError) Error() string {
	return fmt.Sprintf("connection failed: %s", e.Reason)
}

// Unwrap exposes the collaborator error.
func (e *ConnectionFailedError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrConnectionFailed) true.
func (e *ConnectionFailedError) Is(target error) bool {
	return target == ErrConnectionFailed
}

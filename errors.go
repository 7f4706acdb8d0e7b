package inboxcore

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated indicates no authenticated session is available. The
// operation is fatal as issued; the presentation layer is expected to
// redirect to login.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrOperationInProgress indicates another mutating operation for the same
// logical key is already in flight.
var ErrOperationInProgress = errors.New("operation in progress")

// NetworkError wraps a transient transport failure. The intent is retryable
// by re-issuing it; the core itself never retries.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

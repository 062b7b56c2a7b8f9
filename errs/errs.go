package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// TransientFetchError marks a query-service failure that the caller may
// retry; the core itself never retries.
type TransientFetchError struct {
	Op  string
	Err error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("%s: transient fetch error: %v", e.Op, e.Err)
}

func (e *TransientFetchError) Unwrap() error {
	return e.Err
}

// Transient wraps a non-nil error from the query service. Returns nil for nil.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientFetchError{Op: op, Err: err}
}

func IsTransient(err error) bool {
	var t *TransientFetchError
	return errors.As(err, &t)
}

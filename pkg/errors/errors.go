// Package errors defines the sentinel errors shared across pipeline phases.
// Only configuration, bulk-I/O and pool-shutdown errors abort a phase; per-record and
// integrity errors are absorbed where they occur and surface as counters.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrBulkIO        = errors.New("bulk i/o error")
	ErrIntegrity     = errors.New("integrity violation")
	ErrShutdown      = errors.New("worker pool failed to drain")
)

// Fatal reports whether err must fail the running phase.
func Fatal(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrBulkIO) || errors.Is(err, ErrShutdown)
}

func Wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

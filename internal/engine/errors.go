package engine

import "github.com/pkg/errors"

// Sentinel errors returned by campaign mutations, the store and the exporter.
// Callers match them with errors.Is; messages carry the wrapped context.
var (
	ErrOutOfRange   = errors.New("index out of range")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrAborted      = errors.New("aborted")
)

func outOfRange(what string, i, n int) error {
	return errors.Wrapf(ErrOutOfRange, "%s %d (have %d)", what, i, n)
}

func invalid(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}

// Package apperr defines the sentinel errors shared across quire packages.
package apperr

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrCycle              = errors.New("folder move would create a cycle")
	ErrInvalidInput       = errors.New("invalid input")
	ErrBridgeUnavailable  = errors.New("host bridge unavailable")
	ErrUnsupportedVersion = errors.New("unsupported payload version")
)

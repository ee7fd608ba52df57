package domain

import "errors"

var (
	// ErrUnauthenticated is returned when an operation requires an active
	// identity and none is present. No network call is made in that case.
	ErrUnauthenticated = errors.New("no active identity")
	// ErrForbidden is returned when a role-gated operation is attempted
	// without the ADMIN role.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when a referenced product or cart line is
	// absent on the server.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for malformed input, e.g. an oversized
	// image upload.
	ErrValidation = errors.New("validation failed")
	// ErrNetwork marks transport-level failures.
	ErrNetwork = errors.New("network failure")
)

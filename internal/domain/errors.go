package domain

import "errors"

var (
	// ErrNotFound indicates a lookup miss for required data.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates an authenticated caller lacking the required
	// role or permission. Distinct from an unauthenticated request.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated indicates a missing or invalid identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrAuthProvider indicates the external identity provider rejected the
	// request or was unreachable.
	ErrAuthProvider = errors.New("identity provider error")
	// ErrValidation indicates a malformed request body.
	ErrValidation = errors.New("validation failed")
)

package remote

import "errors"

var (
	// ErrNotFound is returned when the backend reports an unknown record
	// id. Callers mutating state treat it as "already gone".
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized is returned when the backend rejects the session
	// token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBadShape is returned when a response body does not match the
	// expected schema. The gateway fails loudly instead of propagating
	// loosely-typed data.
	ErrBadShape = errors.New("response shape mismatch")
)

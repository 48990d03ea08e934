package service

import "errors"

// Sentinel error kinds for the pipelines. Handlers map these onto HTTP
// statuses; everything else is an internal error. Validation and
// authorization failures are returned before any mutation happens.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrGone         = errors.New("gone") // expiry gate, HTTP 410 semantics
	ErrTooLarge     = errors.New("payload too large")
)

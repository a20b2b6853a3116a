package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// listing does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. empty have/want field).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when the acting user is neither the listing owner
// nor privileged and attempts a status transition.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrPreconditionFailed is returned when a status transition is requested on
// a listing that is no longer active — including the losing side of two
// racing transitions. It is a legitimate terminal outcome, not a fault.
// Handlers should map this to HTTP 409 Conflict.
var ErrPreconditionFailed = errors.New("precondition failed")

// ErrStorageUnavailable wraps persistence-layer faults (connection loss, I/O
// failure). Fatal to the triggering call only, never to the process.
// Handlers should map this to HTTP 503.
var ErrStorageUnavailable = errors.New("storage unavailable")

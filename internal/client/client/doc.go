// Package client talks to the hobbytracker HTTP API.
//
// # Overview
//
// Client is the transport-agnostic contract used by the CLI; HTTPClient is
// the implementation over net/http with JSON bodies.
//
// # Error Handling
//
// Non-2xx responses come back as *APIError, which carries the HTTP status and
// the server's "detail" string and matches one of the sentinel errors with
// errors.Is: ErrAlreadyRegistered, ErrInvalidInput, ErrRateLimited,
// ErrNotFound, ErrServer. Transport failures match ErrUnavailable.
package client

package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrInvalidInput      = errors.New("invalid input")
	ErrRateLimited       = errors.New("rate limited")
	ErrNotFound          = errors.New("not found")
	ErrServer            = errors.New("server error")
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return e.Detail
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusBadRequest:
		return ErrAlreadyRegistered
	case e.Status == http.StatusUnprocessableEntity:
		return ErrInvalidInput
	case e.Status == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusServiceUnavailable:
		return ErrUnavailable
	default:
		return ErrServer
	}
}

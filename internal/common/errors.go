// Package common defines sentinel errors and constants shared by the server
// and the command-line client. Callers should match errors with errors.Is.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// ErrorConflict reports a duplicate username or email found before insert.
	ErrorConflict = errors.New("username or email already registered")

	// ErrorIntegrity reports that the store itself rejected a row because of a
	// unique constraint. It is a conflict as well.
	ErrorIntegrity = fmt.Errorf("%w: integrity constraint violated", ErrorConflict)
)

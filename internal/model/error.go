package model

import (
	"context"
	"errors"
	"fmt"
)

// Error taxonomy shared by every layer. Lower layers wrap one of these with
// fmt.Errorf("%w: ...", ...) so callers can classify with errors.Is.
var (
	// ErrCrypto covers an AEAD tag mismatch and a wrong password alike.
	// The two cases are never distinguished.
	ErrCrypto = errors.New("invalid password or corrupted data")

	// ErrFormat is returned for a persisted blob or hash that cannot be parsed.
	ErrFormat = errors.New("malformed stored data")

	// ErrIO is returned on filesystem failure.
	ErrIO = errors.New("filesystem failure")

	// ErrValidation is returned for malformed key input or a password that
	// violates the configured policy.
	ErrValidation = errors.New("validation failed")

	// ErrState is returned when an operation is invoked outside its legal
	// authentication state. It indicates a caller bug.
	ErrState = errors.New("operation not allowed in current state")

	// ErrNetwork is returned when the node client fails to answer.
	ErrNetwork = errors.New("network request failed")

	// ErrLockedOut is returned while password verification is suspended
	// after too many failed attempts.
	ErrLockedOut = errors.New("too many failed attempts, try again later")
)

// StateError describes which operation was refused and in which phase.
type StateError struct {
	Op    string
	Phase string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s not allowed while %s", ErrState, e.Op, e.Phase)
}

// Unwrap makes errors.Is(err, ErrState) hold for every StateError.
func (e *StateError) Unwrap() error {
	return ErrState
}

// IsStateError checks if error is a StateError
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

// FileExistsError is returned when an operation would overwrite a
// non-empty persisted file.
type FileExistsError struct {
	Message string
}

func (e *FileExistsError) Error() string {
	return e.Message
}

// IsFileExistsError checks if error is FileExistsError
func IsFileExistsError(err error) bool {
	var fe *FileExistsError
	return errors.As(err, &fe)
}

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// CodeUnavailable is the error code for requests the service could not
// finish, such as during shutdown.
const CodeUnavailable = "unavailable"

// ErrorCode returns a short machine readable code for the taxonomy class of err.
func ErrorCode(err error) string {
	switch {
	case IsFileExistsError(err):
		return "exists"
	case errors.Is(err, ErrLockedOut):
		return "locked_out"
	case errors.Is(err, ErrCrypto):
		return "crypto"
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrIO):
		return "io"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrState):
		return "state"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeUnavailable
	default:
		return "internal"
	}
}

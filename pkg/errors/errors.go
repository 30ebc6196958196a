package errors

import "fmt"

// AppError is the structured error type returned by every package in this
// repository that talks to an external system (broker, management API,
// config loader). It carries a stable machine-readable Code alongside a
// human-readable Message and the error that caused it, if any.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// New creates an AppError with the given code, message and optional cause.
func New(code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Err: cause}
}

// Wrap attaches a message to an existing error without a specific code.
// Used for ambient failures (config loading, IO) that don't need a
// dedicated error code elsewhere in the system.
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: "UNKNOWN", Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is(err, target) to match on Code rather than identity,
// so callers can test for a specific failure kind without a type assertion.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

package scorecard

import (
	"errors"
	"fmt"
)

// ErrorCode is a machine-readable classification of an engine error.
type ErrorCode string

const (
	// CodeValidation marks a bad name, cadence, scoring mode, or target
	// combination. Raised before any write.
	CodeValidation ErrorCode = "VALIDATION"
	// CodeInvalidValue marks a raw entry value that cannot be parsed for the
	// metric's scoring mode.
	CodeInvalidValue ErrorCode = "INVALID_VALUE"
	// CodeNotFound marks an operation on a non-existent metric, entry,
	// scorecard, or user.
	CodeNotFound ErrorCode = "NOT_FOUND"
	// CodeConflict marks a state conflict, such as hard-deleting a metric
	// that is still active or creating a duplicate scorecard.
	CodeConflict ErrorCode = "CONFLICT"
	// CodeForbidden marks a denial from the authorization collaborator.
	CodeForbidden ErrorCode = "FORBIDDEN"
	// CodePersistence marks a store-layer failure, opaque to the engine and
	// surfaced verbatim to the caller.
	CodePersistence ErrorCode = "PERSISTENCE"
)

// Error is a structured engine error with a machine-readable code.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// CodeOf returns the ErrorCode carried by err, or CodePersistence when err is
// not an engine error (store failures are passed through unclassified).
func CodeOf(err error) ErrorCode {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Code
	}
	return CodePersistence
}

func validationErrf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func invalidValueErrf(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidValue, Message: fmt.Sprintf(format, args...)}
}

func notFoundErrf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictErrf(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

func forbiddenErrf(format string, args ...any) *Error {
	return &Error{Code: CodeForbidden, Message: fmt.Sprintf(format, args...)}
}

// Package errors holds the application error taxonomy and its HTTP mapping.
package errors

import (
	"net/http"

	"gatekeeper/internal/errors"
)

// AppError is an error the delivery layer can render: an HTTP status, a
// stable machine code, a client-safe message and optional details.
type AppError interface {
	error
	HTTPCode() int
	ErrorCode() string
	Message() string
	Details() string
}

// AsAppError returns the first AppError in err's chain.
func AsAppError(err error) (AppError, bool) {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}

	return nil, false
}

// BaseError is a sentinel AppError. Copies made with WithDetails still match
// the sentinel under errors.Is because matching is by code.
type BaseError struct {
	status  int
	code    string
	message string
	details string
}

func newBaseError(status int, code, message string) *BaseError {
	return &BaseError{status: status, code: code, message: message}
}

func (e *BaseError) Error() string     { return e.message }
func (e *BaseError) HTTPCode() int     { return e.status }
func (e *BaseError) ErrorCode() string { return e.code }
func (e *BaseError) Message() string   { return e.message }
func (e *BaseError) Details() string   { return e.details }

func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

func (e *BaseError) WithDetails(details string) *BaseError {
	clone := *e
	clone.details = details

	return &clone
}

func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)

	return ok && t.code == e.code
}

const serverErrorMessage = "Server error, please try again later"

// Validation.
var (
	ErrValidationFailed = newBaseError(http.StatusUnprocessableEntity, "VALIDATION_FAILED", "All fields are required")
	ErrPasswordMismatch = newBaseError(http.StatusUnprocessableEntity, "PASSWORD_MISMATCH", "Passwords do not match")
)

// Users and credentials.
var (
	ErrUserAlreadyExists  = newBaseError(http.StatusUnprocessableEntity, "USER_ALREADY_EXISTS", "This email is already registered")
	ErrInvalidCredentials = newBaseError(http.StatusUnprocessableEntity, "INVALID_CREDENTIALS", "Invalid password")
	ErrUserNotFound       = newBaseError(http.StatusNotFound, "USER_NOT_FOUND", "User not found")
)

// Access to gated routes.
var (
	ErrAccessDenied = newBaseError(http.StatusUnauthorized, "ACCESS_DENIED", "Access denied")
	ErrInvalidToken = newBaseError(http.StatusBadRequest, "INVALID_TOKEN", "Invalid token")
)

// Server side failures. The message never says what went wrong.
var (
	ErrUserCreationFailed = newBaseError(http.StatusInternalServerError, "USER_CREATION_FAILED", serverErrorMessage)
	ErrPasswordHashFailed = newBaseError(http.StatusInternalServerError, "PASSWORD_HASH_FAILED", serverErrorMessage)
	ErrTokenIssueFailed   = newBaseError(http.StatusInternalServerError, "TOKEN_ISSUE_FAILED", serverErrorMessage)
	ErrInternalError      = newBaseError(http.StatusInternalServerError, "INTERNAL_ERROR", serverErrorMessage)
)

// DatabaseExecuteError wraps a store failure as a 500. The driver error stays
// reachable through Unwrap but never reaches the client.
type DatabaseExecuteError struct {
	err     error
	details string
}

func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{err: err, details: details}
}

func (e *DatabaseExecuteError) Error() string {
	return "database execution failed: " + e.details + ": " + e.err.Error()
}

func (e *DatabaseExecuteError) Unwrap() error     { return e.err }
func (e *DatabaseExecuteError) HTTPCode() int     { return http.StatusInternalServerError }
func (e *DatabaseExecuteError) ErrorCode() string { return "DATABASE_EXECUTE_FAILED" }
func (e *DatabaseExecuteError) Message() string   { return serverErrorMessage }
func (e *DatabaseExecuteError) Details() string   { return e.details }

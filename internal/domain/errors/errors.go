// Package errors defines the domain error taxonomy. Every failure this
// subsystem can produce is one of the predefined kinds below; the transport
// layer maps them to HTTP statuses via the AppError interface.
package errors

import (
	"net/http"

	"campus/internal/errors"
)

// AppError defines the interface for application-specific errors.
type AppError interface {
	error
	HTTPCode() int     // Suggested HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-facing error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface.
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error.
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message.
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the suggested HTTP status code.
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code.
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-facing error message.
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information.
func (e *BaseError) Details() string {
	return e.details
}

// Predefined error kinds. All are terminal: nothing here is retried
// internally because every failure reflects bad input or a security event,
// never transient unavailability.
var (
	// Credential verification failures. ErrCredentialNotSet deliberately
	// carries the same public message as ErrInvalidCredentials so that
	// account state does not leak; the code differs for internal telemetry.
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"invalid email or password",
		"",
	)

	ErrCredentialNotSet = NewBaseError(
		http.StatusUnauthorized,
		"CREDENTIAL_NOT_SET",
		"invalid email or password",
		"",
	)

	ErrPasswordMismatch = NewBaseError(
		http.StatusUnauthorized,
		"PASSWORD_MISMATCH",
		"current password is incorrect",
		"",
	)

	// Account status failures, enforced at login and at every refresh.
	ErrAccountSuspended = NewBaseError(
		http.StatusForbidden,
		"ACCOUNT_SUSPENDED",
		"account is suspended",
		"",
	)

	ErrAccountInactive = NewBaseError(
		http.StatusForbidden,
		"ACCOUNT_INACTIVE",
		"account is inactive",
		"",
	)

	ErrAccountPending = NewBaseError(
		http.StatusForbidden,
		"ACCOUNT_PENDING",
		"account is pending activation",
		"",
	)

	// Session lifecycle failures. SessionRevoked also covers the
	// reuse-detection cascade: the client must discard tokens and re-login.
	ErrInvalidRefreshToken = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_REFRESH_TOKEN",
		"invalid refresh token",
		"",
	)

	ErrSessionExpired = NewBaseError(
		http.StatusUnauthorized,
		"SESSION_EXPIRED",
		"session has expired",
		"",
	)

	ErrSessionRevoked = NewBaseError(
		http.StatusUnauthorized,
		"SESSION_REVOKED",
		"session has been revoked",
		"",
	)

	ErrSessionNotFound = NewBaseError(
		http.StatusNotFound,
		"SESSION_NOT_FOUND",
		"session not found",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"access denied",
		"",
	)

	// Access token verification failures. Both are terminal for the caller.
	ErrTokenExpired = NewBaseError(
		http.StatusUnauthorized,
		"TOKEN_EXPIRED",
		"access token has expired",
		"",
	)

	ErrTokenInvalid = NewBaseError(
		http.StatusUnauthorized,
		"TOKEN_INVALID",
		"access token is invalid",
		"",
	)

	// Password reset failures. Expired, consumed and never-issued tokens are
	// deliberately indistinguishable to the caller.
	ErrResetTokenInvalid = NewBaseError(
		http.StatusBadRequest,
		"RESET_TOKEN_INVALID",
		"reset token is invalid or has expired",
		"",
	)

	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"input validation failed",
		"",
	)

	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"user not found",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"PASSWORD_HASH_FAILED",
		"failed to process password",
		"",
	)
)

// DatabaseExecuteError represents a store-layer infrastructure failure. The
// transport layer treats it as a 5xx; it is never swallowed or retried here.
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error.
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface.
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the suggested HTTP status code.
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code.
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-facing error message.
func (e *DatabaseExecuteError) Message() string {
	return "database execution failed"
}

// Details returns detailed error information.
func (e *DatabaseExecuteError) Details() string {
	return e.details
}

// Unwrap exposes the underlying store error for errors.Is checks.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

const (
	// Generic errors
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidGrant  ErrorCode = "INVALID_GRANT"
	ErrCodeUnsupportedGT ErrorCode = "UNSUPPORTED_GRANT_TYPE"

	// Key lifecycle errors
	ErrCodeKeyGeneration ErrorCode = "KEY_GENERATION_FAILED"
	ErrCodeEmptyKeySet   ErrorCode = "EMPTY_KEY_SET"

	// Token issuance errors
	ErrCodeSigning       ErrorCode = "SIGNING_FAILED"
	ErrCodeSerialization ErrorCode = "SERIALIZATION_FAILED"

	// Token verification errors
	ErrCodeMissingKid           ErrorCode = "MISSING_KID"
	ErrCodeUnknownKid           ErrorCode = "UNKNOWN_KID"
	ErrCodeUnsupportedAlgorithm ErrorCode = "UNSUPPORTED_ALGORITHM"
	ErrCodeInvalidAudience      ErrorCode = "INVALID_AUDIENCE"
	ErrCodeInvalidSignature     ErrorCode = "INVALID_SIGNATURE"
	ErrCodeTokenExpired         ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid         ErrorCode = "TOKEN_INVALID"
)

// Error represents a structured error with code, message, and optional details
type Error struct {
	Code    ErrorCode              // Unique error code
	Message string                 // Human-readable error message
	Details map[string]interface{} // Optional additional details
	Err     error                  // Wrapped underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with code and message
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrapf wraps an existing error with code and formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
// Returns ErrCodeInternal if the error is not a structured Error
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// IsVerificationFailure reports whether err is one of the token verification
// outcomes a client can cause by presenting a bad or stale token.
func IsVerificationFailure(err error) bool {
	switch GetCode(err) {
	case ErrCodeMissingKid, ErrCodeUnknownKid, ErrCodeUnsupportedAlgorithm,
		ErrCodeInvalidAudience, ErrCodeInvalidSignature, ErrCodeTokenExpired,
		ErrCodeTokenInvalid:
		return true
	}
	return false
}

// MapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func MapErrorCodeToHTTPStatus(code ErrorCode) int {
	switch code {
	// 400 Bad Request
	case ErrCodeInvalidInput, ErrCodeInvalidGrant, ErrCodeUnsupportedGT:
		return http.StatusBadRequest

	// 401 Unauthorized
	case ErrCodeUnauthorized, ErrCodeMissingKid, ErrCodeUnknownKid,
		ErrCodeUnsupportedAlgorithm, ErrCodeInvalidAudience,
		ErrCodeInvalidSignature, ErrCodeTokenExpired, ErrCodeTokenInvalid:
		return http.StatusUnauthorized

	// 500 Internal Server Error (default)
	case ErrCodeInternal, ErrCodeKeyGeneration, ErrCodeEmptyKeySet,
		ErrCodeSigning, ErrCodeSerialization:
		fallthrough
	default:
		return http.StatusInternalServerError
	}
}

// MapErrorCodeToOAuthError maps error codes to the "error" member of an
// OAuth2 error response body.
func MapErrorCodeToOAuthError(code ErrorCode) string {
	switch code {
	case ErrCodeInvalidInput:
		return "invalid_request"
	case ErrCodeInvalidGrant:
		return "invalid_grant"
	case ErrCodeUnsupportedGT:
		return "unsupported_grant_type"
	case ErrCodeUnauthorized:
		return "access_denied"
	case ErrCodeMissingKid, ErrCodeUnknownKid, ErrCodeUnsupportedAlgorithm,
		ErrCodeInvalidAudience, ErrCodeInvalidSignature, ErrCodeTokenExpired,
		ErrCodeTokenInvalid:
		return "invalid_token"
	default:
		return "server_error"
	}
}

// InvalidInput creates an "invalid input" error
func InvalidInput(field, reason string) *Error {
	return New(ErrCodeInvalidInput, fmt.Sprintf("invalid %s: %s", field, reason))
}

// Unauthorized creates an "unauthorized" error
func Unauthorized(message string) *Error {
	return New(ErrCodeUnauthorized, message)
}

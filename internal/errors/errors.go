package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error

	// StatusCode is the HTTP status of a failed remote fetch (0 when the
	// request never produced a response).
	StatusCode int
	// Extension is the rejected file extension of an unsupported upload.
	Extension string
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:       appErr.Code,
			Message:    message,
			Cause:      appErr,
			StatusCode: appErr.StatusCode,
			Extension:  appErr.Extension,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid     = "CONFIG_INVALID"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInternalError     = "INTERNAL_ERROR"
	CodeRemoteFetch       = "REMOTE_FETCH_ERROR"
	CodeParse             = "PARSE_ERROR"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// RemoteFetch reports an HTTP or network failure reaching a remote source.
func RemoteFetch(statusCode int, message string, cause error) *AppError {
	return &AppError{
		Code:       CodeRemoteFetch,
		Message:    message,
		Cause:      cause,
		StatusCode: statusCode,
	}
}

// Parse reports content that could not be read as the given tabular format.
func Parse(format string, cause error) *AppError {
	return &AppError{
		Code:    CodeParse,
		Message: fmt.Sprintf("failed to parse %s data", format),
		Cause:   cause,
	}
}

// UnsupportedFormat reports an upload whose extension has no parser.
func UnsupportedFormat(ext string) *AppError {
	label := ext
	if label == "" {
		label = "(none)"
	}
	return &AppError{
		Code:      CodeUnsupportedFormat,
		Message:   fmt.Sprintf("unsupported file format: %s", label),
		Extension: ext,
	}
}

func hasCode(err error, code string) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Code == code {
		return appErr, true
	}
	return nil, false
}

// IsRemoteFetch returns the remote fetch error in err's chain, if any
func IsRemoteFetch(err error) (*AppError, bool) {
	return hasCode(err, CodeRemoteFetch)
}

// IsParse returns the parse error in err's chain, if any
func IsParse(err error) (*AppError, bool) {
	return hasCode(err, CodeParse)
}

// IsUnsupportedFormat returns the unsupported-format error in err's chain, if any
func IsUnsupportedFormat(err error) (*AppError, bool) {
	return hasCode(err, CodeUnsupportedFormat)
}

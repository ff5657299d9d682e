package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrInternal
	ErrInvalidDate
	ErrDateOutOfRange
	ErrProviderFetch
)

// StatusCode maps the error code to an HTTP status, for the error
// middleware.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest, ErrInvalidDate, ErrDateOutOfRange:
		return http.StatusBadRequest
	case ErrProviderFetch:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// NewInvalidDate flags a date string that failed parsing or range
// validation. These are never coerced to a nearby valid date.
func NewInvalidDate(dateStr string, err error) *AppError {
	return &AppError{
		Code:    ErrInvalidDate,
		Message: fmt.Sprintf("invalid date %q", dateStr),
		Err:     err,
	}
}

// NewProviderFetch wraps a data-provider failure. Provider errors abort
// the whole query; partial availability data is never returned.
func NewProviderFetch(provider string, err error) *AppError {
	return &AppError{
		Code:    ErrProviderFetch,
		Message: fmt.Sprintf("failed to fetch %s", provider),
		Err:     err,
	}
}

// IsInvalidDate reports whether err wraps an invalid-date AppError.
func IsInvalidDate(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == ErrInvalidDate || appErr.Code == ErrDateOutOfRange
	}
	return false
}

// IsProviderFetch reports whether err wraps a provider-fetch AppError.
func IsProviderFetch(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == ErrProviderFetch
	}
	return false
}

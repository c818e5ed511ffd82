package apperror

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrBadRequest        = errors.New("bad request")
	ErrAlreadyRegistered = errors.New("email already registered")
	ErrInvalidToken      = errors.New("invalid verification token")
	ErrTokenExpired      = errors.New("verification token expired")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrDispatchFailure   = errors.New("notification dispatch failed")
	ErrInternal          = errors.New("internal error")
)

// AppError carries the HTTP status a domain failure maps to at the boundary.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func New(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, ErrBadRequest)
}

func AlreadyRegistered(message string) *AppError {
	return New(http.StatusBadRequest, message, ErrAlreadyRegistered)
}

func InvalidToken(message string) *AppError {
	return New(http.StatusBadRequest, message, ErrInvalidToken)
}

func TokenExpired(message string) *AppError {
	return New(http.StatusBadRequest, message, ErrTokenExpired)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, ErrForbidden)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, ErrNotFound)
}

func DispatchFailure(err error) *AppError {
	return New(http.StatusInternalServerError, "verification email could not be sent", errors.Join(ErrDispatchFailure, err))
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "internal server error", err)
}

// FieldError is one entry of a structured validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates per-field failures of a request body.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string { return "validation failed" }

func NewValidationError(fields []FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

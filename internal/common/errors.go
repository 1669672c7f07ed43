package common

import (
	"errors"
	"net/http"
)

// Canonical error codes returned by the API.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeConflict          = "CONFLICT"
	CodeBadRequest        = "BAD_REQUEST"
	CodeInternal          = "INTERNAL"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// NotFound reports a missing customer, product, order or category.
func NotFound(message string, err error) *AppError {
	return NewAppError(CodeNotFound, message, http.StatusNotFound, err)
}

// Validation reports input rejected before any mutation.
func Validation(message string, details any) *AppError {
	e := NewAppError(CodeValidation, message, http.StatusBadRequest, nil)
	e.Details = details
	return e
}

// Conflict reports a uniqueness clash.
func Conflict(message string, err error) *AppError {
	return NewAppError(CodeConflict, message, http.StatusConflict, err)
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var target *AppError
	return errors.As(err, &target) && target.Code == code
}

package dto

import (
	"net/http"
	"strings"
)

// Error codes raised by the HTTP layer itself. Domain errors keep the code
// of their shared.DomainError.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"

	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeTypeMismatch     = "TYPE_MISMATCH"
	ErrCodeDivisionByZero   = "DIVISION_BY_ZERO"
	ErrCodeInvalidCurrency  = "INVALID_CURRENCY"
	ErrCodeInvalidValueType = "INVALID_VALUE_TYPE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeAlreadyExists:  http.StatusConflict,
	ErrCodeInvalidInput:   http.StatusBadRequest,
	ErrCodeTypeMismatch:   http.StatusUnprocessableEntity,
	ErrCodeDivisionByZero: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code. Unlisted
// INVALID_* codes are client errors (400); anything else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

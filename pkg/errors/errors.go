package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Error codes
const (
	CodeAppError   = "APP_ERROR"
	CodeAPIError   = "API_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeSession    = "SESSION_ERROR"
	CodeService    = "SERVICE_ERROR"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
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

func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// APIError is a failed call to the enrichment service. ServerMessage holds the
// "error" field of the response body when the service sent one.
type APIError struct {
	*AppError
	ServerMessage string
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

func (e *APIError) WithCause(cause error) *APIError {
	e.Cause = cause
	return e
}

func (e *APIError) WithServerMessage(msg string) *APIError {
	e.ServerMessage = strings.TrimSpace(msg)
	return e
}

type ValidationError struct {
	*AppError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type SessionError struct {
	*AppError
	Operation string
	Key       string
}

func NewSessionError(message, operation, key string, cause error) *SessionError {
	return &SessionError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeSession,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*AppError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeService,
			StatusCode: 500,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}

// DisplayMessage collapses any failure into the single message shown to the
// user: the server-provided text of an APIError, the message of a
// ValidationError, or fallback for everything else.
func DisplayMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) && apiErr.ServerMessage != "" {
		return apiErr.ServerMessage
	}

	var validationErr *ValidationError
	if stderrors.As(err, &validationErr) {
		return validationErr.Message
	}

	return fallback
}

// StatusCode reports the HTTP status carried by err, or 500.
func StatusCode(err error) int {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		return apiErr.StatusCode
	}
	var validationErr *ValidationError
	if stderrors.As(err, &validationErr) {
		return validationErr.StatusCode
	}
	var sessionErr *SessionError
	if stderrors.As(err, &sessionErr) {
		return sessionErr.StatusCode
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.StatusCode > 0 {
		return appErr.StatusCode
	}
	return 500
}

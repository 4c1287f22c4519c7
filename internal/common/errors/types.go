package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeConfig represents missing or invalid configuration
	ErrTypeConfig ErrorType = "config"
	// ErrTypeValidation represents invalid inbound requests
	ErrTypeValidation ErrorType = "validation"
	// ErrTypeOAuthExchange represents a failed token exchange with the CRM
	ErrTypeOAuthExchange ErrorType = "oauth_exchange"
	// ErrTypeAPICall represents a non-success CRM REST response
	ErrTypeAPICall ErrorType = "api_call"
	// ErrTypePersistence represents token storage read/write failures
	ErrTypePersistence ErrorType = "persistence"
	// ErrTypeInternal represents internal system errors
	ErrTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	// Status carries the upstream HTTP status for api_call and oauth_exchange errors
	Status int   `json:"status,omitempty"`
	Cause  error `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	parts := []string{string(e.Type), e.Message}

	if e.Status != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.Status))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ConfigError creates a new configuration error
func ConfigError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeConfig,
		Message: msg,
	}
}

// ValidationError creates a new validation error
func ValidationError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeValidation,
		Message: msg,
	}
}

// OAuthExchangeError creates a new token exchange error carrying the upstream status
func OAuthExchangeError(msg string, status int) *AppError {
	return &AppError{
		Type:    ErrTypeOAuthExchange,
		Message: msg,
		Status:  status,
	}
}

// APICallError creates a new CRM API error carrying the upstream status
func APICallError(msg string, status int) *AppError {
	return &AppError{
		Type:    ErrTypeAPICall,
		Message: msg,
		Status:  status,
	}
}

// PersistenceError creates a new token storage error
func PersistenceError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypePersistence,
		Message: msg,
		Cause:   cause,
	}
}

// InternalError creates a new internal error
func InternalError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeInternal,
		Message: msg,
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}

	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}

	return appErr.Type == errType
}

// GetType returns the error type if it's an AppError, otherwise returns ErrTypeInternal
func GetType(err error) ErrorType {
	if err == nil {
		return ""
	}

	appErr, ok := err.(*AppError)
	if !ok {
		return ErrTypeInternal
	}

	return appErr.Type
}

// HTTPStatus maps an error to the status code handlers should respond with
func HTTPStatus(err error) int {
	switch GetType(err) {
	case ErrTypeValidation:
		return http.StatusBadRequest
	case ErrTypeConfig, ErrTypeOAuthExchange:
		return http.StatusInternalServerError
	case ErrTypeAPICall:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

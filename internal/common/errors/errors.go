// Package errors provides standardized error handling for the query pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes. The catalog covers
// every code emitted on the wire, including the sentinel strings raised by
// the pipeline packages.
type ErrorCode string

const (
	ErrCodeMalformedClassification ErrorCode = "MALFORMED_CLASSIFICATION"

	ErrCodeGraphQueryFailed ErrorCode = "GRAPH_QUERY_FAILED"

	ErrCodeHistoryStoreUnavailable ErrorCode = "HISTORY_STORE_UNAVAILABLE"
	ErrCodeChatIDMismatch          ErrorCode = "CHAT_ID_MISMATCH"

	ErrCodeSynthesisParseError ErrorCode = "SYNTHESIS_PARSE_ERROR"
	ErrCodeSynthesisEmpty      ErrorCode = "SYNTHESIS_EMPTY"

	ErrCodeInferenceCallFailed ErrorCode = "INFERENCE_CALL_FAILED"
	ErrCodeInferenceTimeout    ErrorCode = "INFERENCE_TIMEOUT"

	ErrCodeUsernameTaken      ErrorCode = "USERNAME_TAKEN"
	ErrCodeEmailRegistered    ErrorCode = "EMAIL_REGISTERED"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeCredentialsCorrupt ErrorCode = "CREDENTIALS_CORRUPT"

	ErrCodeMetadataLookupFailed ErrorCode = "METADATA_LOOKUP_FAILED"
	ErrCodeTrailerNotFound      ErrorCode = "TRAILER_NOT_FOUND"
	ErrCodeMovieNotFound        ErrorCode = "MOVIE_NOT_FOUND"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewHistoryStoreUnavailableError creates a retryable history store error.
// The router collapses this to empty history rather than failing the request.
func NewHistoryStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryStoreUnavailable,
		Message:   "Chat history store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewChatIDMismatchError flags an update whose body id disagrees with the path.
func NewChatIDMismatchError(pathID, bodyID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeChatIDMismatch,
		Message:   "Chat id in body does not match path",
		Details:   fmt.Sprintf("path: %s, body: %s", pathID, bodyID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInferenceCallFailedError creates a retryable inference transport error.
func NewInferenceCallFailedError(stage string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInferenceCallFailed,
		Message:   "Inference call failed",
		Details:   fmt.Sprintf("stage: %s, error: %s", stage, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUsernameTakenError creates a non-retryable signup conflict error.
func NewUsernameTakenError(username string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUsernameTaken,
		Message:   "Username is already in use",
		Details:   fmt.Sprintf("username: %s", username),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmailRegisteredError creates a non-retryable signup conflict error.
func NewEmailRegisteredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailRegistered,
		Message:   "Email is already registered",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidCredentialsError creates a non-retryable login error.
func NewInvalidCredentialsError() *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCredentials,
		Message:   "Invalid email or password",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCredentialsCorruptError flags stored credentials that cannot be verified.
func NewCredentialsCorruptError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCredentialsCorrupt,
		Message:   "Stored credentials are incomplete or invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMetadataLookupFailedError creates a retryable metadata service error.
func NewMetadataLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMetadataLookupFailed,
		Message:   "Movie metadata lookup failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMovieNotFoundError creates a non-retryable missing title error.
func NewMovieNotFoundError(title string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMovieNotFound,
		Message:   "Movie not found",
		Details:   fmt.Sprintf("title: %s", title),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTrailerNotFoundError creates a non-retryable missing trailer error.
func NewTrailerNotFoundError(title string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTrailerNotFound,
		Message:   "No trailer available",
		Details:   fmt.Sprintf("title: %s", title),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      "VALIDATION_ERROR",
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "GRAPH"):
		return "GRAPH"
	case strings.Contains(codeStr, "HISTORY") || strings.Contains(codeStr, "CHAT"):
		return "HISTORY"
	case strings.Contains(codeStr, "SYNTHESIS") || strings.Contains(codeStr, "INFERENCE") || strings.Contains(codeStr, "CLASSIFICATION"):
		return "AI"
	case strings.Contains(codeStr, "USERNAME") || strings.Contains(codeStr, "EMAIL") || strings.Contains(codeStr, "CREDENTIALS"):
		return "AUTH"
	case strings.Contains(codeStr, "METADATA") || strings.Contains(codeStr, "TRAILER") || strings.Contains(codeStr, "MOVIE"):
		return "METADATA"
	default:
		return "OTHER"
	}
}

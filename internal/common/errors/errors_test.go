package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryableClassification(t *testing.T) {
	assert.True(t, NewHistoryStoreUnavailableError(errors.New("conn refused")).Retryable)
	assert.True(t, NewInferenceCallFailedError("query-pipeline", errors.New("502")).Retryable)
	assert.True(t, NewMetadataLookupFailedError(errors.New("timeout")).Retryable)

	assert.False(t, NewInvalidCredentialsError().Retryable)
	assert.False(t, NewChatIDMismatchError("a", "b").Retryable)
	assert.False(t, NewValidationError("missing field").Retryable)
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		category string
	}{
		{ErrCodeGraphQueryFailed, "GRAPH"},
		{ErrCodeHistoryStoreUnavailable, "HISTORY"},
		{ErrCodeChatIDMismatch, "HISTORY"},
		{ErrCodeMalformedClassification, "AI"},
		{ErrCodeSynthesisParseError, "AI"},
		{ErrCodeInferenceTimeout, "AI"},
		{ErrCodeUsernameTaken, "AUTH"},
		{ErrCodeTrailerNotFound, "METADATA"},
		{ErrorCode("SOMETHING_ELSE"), "OTHER"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.category, GetErrorCategory(tt.code), string(tt.code))
	}
}

func TestStandardError_Error(t *testing.T) {
	err := NewMovieNotFoundError("Inception")
	assert.Contains(t, err.Error(), "MOVIE_NOT_FOUND")
	assert.Contains(t, err.Error(), "Movie not found")
}

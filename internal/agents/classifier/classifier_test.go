package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movierag/internal/common/logger"
	"movierag/internal/models"
)

// stubCompleter returns a canned response or error.
type stubCompleter struct {
	response string
	err      error
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt, userInput string) (string, error) {
	return s.response, s.err
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected []models.EntityMatch
	}{
		{
			name:     "single pair",
			response: `{"Category": "Director", "Name": "Christopher Nolan"}`,
			expected: []models.EntityMatch{
				{Category: models.CategoryDirector, Name: "Christopher Nolan"},
			},
		},
		{
			name:     "multiple pairs keep order",
			response: `{"Category": "Director, Genre", "Name": "Christopher Nolan, Thriller"}`,
			expected: []models.EntityMatch{
				{Category: models.CategoryDirector, Name: "Christopher Nolan"},
				{Category: models.CategoryGenre, Name: "Thriller"},
			},
		},
		{
			name:     "whitespace trimmed and empty entries dropped",
			response: `{"Category": " Actor ,, Genre ", "Name": " Tom Hanks , , Comedy "}`,
			expected: []models.EntityMatch{
				{Category: models.CategoryActor, Name: "Tom Hanks"},
				{Category: models.CategoryGenre, Name: "Comedy"},
			},
		},
		{
			name:     "length mismatch truncates to shorter list",
			response: `{"Category": "Director, Actor", "Name": "Christopher Nolan"}`,
			expected: []models.EntityMatch{
				{Category: models.CategoryDirector, Name: "Christopher Nolan"},
			},
		},
		{
			name:     "both fields empty yields no pairs",
			response: `{"Category": "", "Name": ""}`,
			expected: nil,
		},
		{
			name:     "surrounding whitespace in raw output tolerated",
			response: "\n  {\"Category\": \"Movie\", \"Name\": \"Inception\"}  \n",
			expected: []models.EntityMatch{
				{Category: models.CategoryMovie, Name: "Inception"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&stubCompleter{response: tt.response}, logger.NewTestLogger(t))

			matches, err := c.Classify(context.Background(), "some query")

			require.NoError(t, err)
			if tt.expected == nil {
				assert.Empty(t, matches)
			} else {
				assert.Equal(t, tt.expected, matches)
			}
		})
	}
}

func TestClassify_MalformedOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "natural language", response: "I think you mean Christopher Nolan"},
		{name: "bare array", response: `["Director", "Nolan"]`},
		{name: "empty string", response: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&stubCompleter{response: tt.response}, logger.NewTestLogger(t))

			_, err := c.Classify(context.Background(), "some query")

			assert.ErrorIs(t, err, ErrMalformedClassification)
		})
	}
}

func TestClassify_TransportError(t *testing.T) {
	callErr := errors.New("connection refused")
	c := New(&stubCompleter{err: callErr}, logger.NewTestLogger(t))

	_, err := c.Classify(context.Background(), "some query")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedClassification)
	assert.ErrorIs(t, err, callErr)
}

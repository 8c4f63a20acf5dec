package recommender

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movierag/internal/common/logger"
	"movierag/internal/models"
)

// stubCompleter records the inputs it was called with.
type stubCompleter struct {
	response   string
	err        error
	lastSystem string
	lastInput  string
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt, userInput string) (string, error) {
	s.lastSystem = systemPrompt
	s.lastInput = userInput
	return s.response, s.err
}

func sampleContext() models.MergedContext {
	return models.MergedContext{
		Categories: []models.CategoryMatch{
			{
				Category: models.CategoryDirector,
				Name:     "Christopher Nolan",
				Results: []models.MovieRecord{
					{ID: 27205, Title: "Inception", Overview: "A thief who steals corporate secrets.", Rating: 8.3},
				},
			},
		},
		Profile: "Preferred genres: [Science Fiction]; Top directors: [Christopher Nolan]",
	}
}

func TestSynthesize_ValidJSONArray(t *testing.T) {
	response := `[
		{"Title": "Interstellar", "Director": "Christopher Nolan", "Star Cast": ["Matthew McConaughey"], "Genre": "Science Fiction", "Overview": "A team travels through a wormhole.", "Reason": "Matches your taste for Nolan films.", "Image URL": "https://image.tmdb.org/t/p/w500/interstellar.jpg"},
		{"Title": "Tenet", "Director": "Christopher Nolan", "Star Cast": ["John David Washington"], "Genre": "Thriller", "Overview": "Time inversion espionage.", "Reason": "Another mind-bending Nolan thriller.", "Image URL": "https://image.tmdb.org/t/p/w500/tenet.jpg"}
	]`
	stub := &stubCompleter{response: response}
	s := New(stub, logger.NewTestLogger(t))

	result, err := s.Synthesize(context.Background(), "movies like Inception", sampleContext())

	require.NoError(t, err)
	require.Nil(t, result.Err)
	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, "Interstellar", result.Recommendations[0].Title)
	assert.Equal(t, []string{"Matthew McConaughey"}, result.Recommendations[0].StarCast)
	assert.Equal(t, "Tenet", result.Recommendations[1].Title)
}

func TestSynthesize_InvalidJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "prose", response: "Here are some movies you might like: Interstellar, Tenet"},
		{name: "markdown fenced", response: "```json\n[{\"Title\": \"Tenet\"}]\n```"},
		{name: "object instead of array", response: `{"Title": "Tenet"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&stubCompleter{response: tt.response}, logger.NewTestLogger(t))

			result, err := s.Synthesize(context.Background(), "query", sampleContext())

			require.NoError(t, err)
			require.NotNil(t, result.Err)
			assert.Equal(t, "Invalid JSON response", result.Err.Error)
			assert.Nil(t, result.Recommendations)
		})
	}
}

func TestSynthesize_EmptyContent(t *testing.T) {
	for _, response := range []string{"", "   ", "\n\t"} {
		s := New(&stubCompleter{response: response}, logger.NewTestLogger(t))

		result, err := s.Synthesize(context.Background(), "query", sampleContext())

		require.NoError(t, err)
		require.NotNil(t, result.Err)
		assert.Equal(t, "LLM returned empty content", result.Err.Error)
	}
}

func TestSynthesize_TransportErrorPropagates(t *testing.T) {
	callErr := errors.New("upstream timeout")
	s := New(&stubCompleter{err: callErr}, logger.NewTestLogger(t))

	result, err := s.Synthesize(context.Background(), "query", sampleContext())

	assert.Nil(t, result)
	assert.ErrorIs(t, err, callErr)
}

func TestSynthesize_InputCarriesOrderedContext(t *testing.T) {
	stub := &stubCompleter{response: "[]"}
	s := New(stub, logger.NewTestLogger(t))

	_, err := s.Synthesize(context.Background(), "movies like Inception", sampleContext())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stub.lastInput, "Query: movies like Inception\nContext: "))

	// The serialized context must be one array with the profile last.
	ctxJSON := strings.TrimPrefix(stub.lastInput, "Query: movies like Inception\nContext: ")
	var elems []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(ctxJSON), &elems))
	require.Len(t, elems, 2)

	var profile string
	require.NoError(t, json.Unmarshal(elems[len(elems)-1], &profile))
	assert.Contains(t, profile, "Preferred genres")
}

func TestResult_Payload(t *testing.T) {
	recs := []models.Recommendation{{Title: "Tenet"}}
	assert.Equal(t, recs, (&Result{Recommendations: recs}).Payload())

	payload := &models.ErrorPayload{Error: "Invalid JSON response"}
	assert.Equal(t, payload, (&Result{Err: payload}).Payload())
}

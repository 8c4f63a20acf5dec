package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movierag/internal/common/logger"
	"movierag/internal/models"
)

type stubCompleter struct {
	response  string
	err       error
	lastInput string
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt, userInput string) (string, error) {
	s.lastInput = userInput
	return s.response, s.err
}

func TestExtract_PassesSummaryThroughVerbatim(t *testing.T) {
	summary := "Preferred genres: [Science Fiction, Thriller]; Top directors: [Christopher Nolan]; Favorite actors: [Leonardo DiCaprio]; Key themes: [time, dreams, space travel]"
	e := New(&stubCompleter{response: summary}, logger.NewTestLogger(t))

	got, err := e.Extract(context.Background(), []string{
		"movies like Inception",
		"best Nolan thrillers",
	})

	require.NoError(t, err)
	assert.Equal(t, summary, got)
}

func TestExtract_JoinsHistoryWithNewlines(t *testing.T) {
	stub := &stubCompleter{response: models.ProfileSentinel}
	e := New(stub, logger.NewTestLogger(t))

	_, err := e.Extract(context.Background(), []string{"first query", "second query"})

	require.NoError(t, err)
	assert.Equal(t, "first query\nsecond query", stub.lastInput)
}

func TestExtract_EmptyHistory(t *testing.T) {
	stub := &stubCompleter{response: models.ProfileSentinel}
	e := New(stub, logger.NewTestLogger(t))

	got, err := e.Extract(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "", stub.lastInput)
	assert.Equal(t, models.ProfileSentinel, got)
}

func TestExtract_TransportErrorPropagates(t *testing.T) {
	callErr := errors.New("upstream timeout")
	e := New(&stubCompleter{err: callErr}, logger.NewTestLogger(t))

	_, err := e.Extract(context.Background(), []string{"a query"})

	assert.ErrorIs(t, err, callErr)
}

package history

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movierag/internal/common/logger"
	"movierag/internal/models"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return mr, redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func newTestStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	mr, client := setupTestRedis(t)
	return mr, NewStore(client, logger.NewTestLogger(t))
}

func sampleSession(id string) models.ChatSession {
	return models.ChatSession{
		ID:    id,
		Title: "Movie night planning",
		Messages: []models.ChatMessage{
			{ID: "m1", Role: "user", Text: "movies like Inception"},
			{ID: "m2", Role: "assistant", Text: "Here are some picks."},
		},
	}
}

func TestUpsertAndGetChat(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	session := sampleSession("chat-1")
	require.NoError(t, store.UpsertChat(ctx, "alice", session))

	got, err := store.GetChat(ctx, "alice", "chat-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.Title, got.Title)
	assert.Equal(t, session.Messages, got.Messages)
}

func TestGetChat_Missing(t *testing.T) {
	_, store := newTestStore(t)

	got, err := store.GetChat(context.Background(), "alice", "nope")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetChat_CorruptDocumentSkipped(t *testing.T) {
	mr, store := newTestStore(t)
	require.NoError(t, mr.Set("users:alice:chats:bad", "{not json"))

	got, err := store.GetChat(context.Background(), "alice", "bad")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListChats(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertChat(ctx, "alice", sampleSession("chat-1")))
	require.NoError(t, store.UpsertChat(ctx, "alice", sampleSession("chat-2")))
	require.NoError(t, store.UpsertChat(ctx, "bob", sampleSession("chat-3")))

	sessions, err := store.ListChats(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	empty, err := store.ListChats(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteChat(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertChat(ctx, "alice", sampleSession("chat-1")))
	require.NoError(t, store.DeleteChat(ctx, "alice", "chat-1"))

	got, err := store.GetChat(ctx, "alice", "chat-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	sessions, err := store.ListChats(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestDeleteChat_MissingIsNoop(t *testing.T) {
	_, store := newTestStore(t)

	assert.NoError(t, store.DeleteChat(context.Background(), "alice", "never-existed"))
}

func TestUserMessageHistory(t *testing.T) {
	_, store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertChat(ctx, "alice", models.ChatSession{
		ID: "chat-1",
		Messages: []models.ChatMessage{
			{Role: "user", Text: "movies like Inception"},
			{Role: "assistant", Text: "Try Interstellar."},
			{Role: "user", Text: "something lighter"},
		},
	}))
	require.NoError(t, store.UpsertChat(ctx, "alice", models.ChatSession{
		ID: "chat-2",
		Messages: []models.ChatMessage{
			{Role: "user", Text: "best Tom Hanks films"},
			{Role: "user", Text: ""}, // empty texts are dropped
		},
	}))

	history, err := store.UserMessageHistory(ctx, "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"movies like Inception",
		"something lighter",
		"best Tom Hanks films",
	}, history)
}

func TestUserMessageHistory_MissingUser(t *testing.T) {
	_, store := newTestStore(t)

	history, err := store.UserMessageHistory(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestStoreUnavailable(t *testing.T) {
	mr, store := newTestStore(t)
	mr.Close()

	_, err := store.ListChats(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = store.UserMessageHistory(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	err = store.UpsertChat(context.Background(), "alice", sampleSession("chat-1"))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

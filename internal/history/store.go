// Package history persists chat sessions in the Redis document store and
// feeds the profile stage with past user queries.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"movierag/internal/common/logger"
	"movierag/internal/models"
)

// ErrStoreUnavailable flags a history-store failure. Callers on the query
// path collapse it to an empty history; the chat CRUD surface reports it.
var ErrStoreUnavailable = errors.New("HISTORY_STORE_UNAVAILABLE")

// Store keeps one JSON document per chat session plus a per-user index set.
type Store struct {
	client *redis.Client
	logger logger.Logger
}

func NewStore(client *redis.Client, log logger.Logger) *Store {
	return &Store{
		client: client,
		logger: log.With(map[string]interface{}{
			"component": "history-store",
		}),
	}
}

func chatKey(username, chatID string) string {
	return fmt.Sprintf("users:%s:chats:%s", username, chatID)
}

func chatIndexKey(username string) string {
	return fmt.Sprintf("users:%s:chats", username)
}

// ListChats returns all chat sessions for a user. A user with no chats
// yields an empty slice, not an error.
func (s *Store) ListChats(ctx context.Context, username string) ([]models.ChatSession, error) {
	ids, err := s.client.SMembers(ctx, chatIndexKey(username)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list chats: %v", ErrStoreUnavailable, err)
	}

	sessions := make([]models.ChatSession, 0, len(ids))
	for _, id := range ids {
		session, err := s.GetChat(ctx, username, id)
		if err != nil {
			return nil, err
		}
		if session != nil {
			sessions = append(sessions, *session)
		}
	}
	return sessions, nil
}

// GetChat returns one chat session, or nil when it does not exist.
func (s *Store) GetChat(ctx context.Context, username, chatID string) (*models.ChatSession, error) {
	raw, err := s.client.Get(ctx, chatKey(username, chatID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get chat: %v", ErrStoreUnavailable, err)
	}

	var session models.ChatSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		// A corrupt document is skipped rather than failing the listing.
		s.logger.Warn("skipping corrupt chat document", map[string]interface{}{
			"chatId": chatID,
			"error":  err.Error(),
		})
		return nil, nil
	}
	session.ID = chatID
	return &session, nil
}

// UpsertChat stores a chat session document and indexes it for the user.
func (s *Store) UpsertChat(ctx context.Context, username string, session models.ChatSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal chat: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, chatKey(username, session.ID), data, 0)
	pipe.SAdd(ctx, chatIndexKey(username), session.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: upsert chat: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// DeleteChat removes a chat session document and its index entry.
func (s *Store) DeleteChat(ctx context.Context, username, chatID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, chatKey(username, chatID))
	pipe.SRem(ctx, chatIndexKey(username), chatID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: delete chat: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// UserMessageHistory flattens the user-authored message texts across all of
// a user's chat sessions. Ordering across sessions is not guaranteed. A
// missing user yields an empty slice and nil error; store failures return a
// typed error for the caller to collapse at the router boundary.
func (s *Store) UserMessageHistory(ctx context.Context, username string) ([]string, error) {
	sessions, err := s.ListChats(ctx, username)
	if err != nil {
		return nil, err
	}

	var texts []string
	for i := range sessions {
		texts = append(texts, sessions[i].UserMessages()...)
	}
	return texts, nil
}

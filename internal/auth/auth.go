// Package auth implements the credential-storage flow: signup and login
// against the user document store.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/pbkdf2"

	"movierag/internal/common/logger"
	"movierag/internal/models"
)

var (
	ErrUsernameTaken      = errors.New("USERNAME_TAKEN")
	ErrEmailRegistered    = errors.New("EMAIL_REGISTERED")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrCredentialsCorrupt = errors.New("CREDENTIALS_CORRUPT")
)

const (
	pbkdf2Iterations = 100_000
	saltBytes        = 16
	keyBytes         = 32
)

// Service manages user accounts in the document store.
type Service struct {
	client *redis.Client
	logger logger.Logger
}

func NewService(client *redis.Client, log logger.Logger) *Service {
	return &Service{
		client: client,
		logger: log.With(map[string]interface{}{
			"component": "auth",
		}),
	}
}

func userKey(username string) string {
	return fmt.Sprintf("users:%s", username)
}

func emailKey(email string) string {
	return fmt.Sprintf("users:email:%s", email)
}

// Signup registers a new account. Username and email must both be unused.
func (s *Service) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	if exists, err := s.client.Exists(ctx, userKey(username)).Result(); err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	} else if exists > 0 {
		return nil, ErrUsernameTaken
	}

	if exists, err := s.client.Exists(ctx, emailKey(email)).Result(); err != nil {
		return nil, fmt.Errorf("email lookup: %w", err)
	} else if exists > 0 {
		return nil, ErrEmailRegistered
	}

	salt, hash, err := hashPassword(password, "")
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordSalt: salt,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("marshal user: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, userKey(username), data, 0)
	pipe.Set(ctx, emailKey(email), username, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("store user: %w", err)
	}

	s.logger.Info("user registered", map[string]interface{}{
		"username": username,
	})

	return &user, nil
}

// Login verifies an email/password pair and returns the account. The
// last-login timestamp is updated best-effort; a failed update does not fail
// the login.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	username, err := s.client.Get(ctx, emailKey(email)).Result()
	if err == redis.Nil {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("email lookup: %w", err)
	}

	raw, err := s.client.Get(ctx, userKey(username)).Result()
	if err == redis.Nil {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialsCorrupt, err)
	}

	if user.PasswordSalt == "" || user.PasswordHash == "" {
		return nil, ErrCredentialsCorrupt
	}

	ok, err := verifyPassword(password, user.PasswordSalt, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	user.LastLoginAt = time.Now().UTC().Format(time.RFC3339)
	if data, err := json.Marshal(user); err == nil {
		if err := s.client.Set(ctx, userKey(username), data, 0).Err(); err != nil {
			s.logger.Warn("failed to update last login", map[string]interface{}{
				"username": username,
				"error":    err.Error(),
			})
		}
	}

	return &user, nil
}

// hashPassword derives a PBKDF2-SHA256 hash. When salt is empty a fresh
// random salt is generated; both salt and hash are hex encoded.
func hashPassword(password, salt string) (string, string, error) {
	var saltRaw []byte
	if salt == "" {
		saltRaw = make([]byte, saltBytes)
		if _, err := rand.Read(saltRaw); err != nil {
			return "", "", fmt.Errorf("generate salt: %w", err)
		}
		salt = hex.EncodeToString(saltRaw)
	} else {
		var err error
		saltRaw, err = hex.DecodeString(salt)
		if err != nil {
			return "", "", fmt.Errorf("%w: stored salt is not hex", ErrCredentialsCorrupt)
		}
	}

	key := pbkdf2.Key([]byte(password), saltRaw, pbkdf2Iterations, keyBytes, sha256.New)
	return salt, hex.EncodeToString(key), nil
}

func verifyPassword(password, salt, passwordHash string) (bool, error) {
	_, computed, err := hashPassword(password, salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(computed), []byte(passwordHash)) == 1, nil
}

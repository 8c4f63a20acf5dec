package auth

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movierag/internal/common/logger"
)

func newTestService(t *testing.T) (*miniredis.Miniredis, *Service) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr, NewService(client, logger.NewTestLogger(t))
}

func TestSignup(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, user.PasswordSalt)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)
	assert.NotEmpty(t, user.CreatedAt)
}

func TestSignup_UsernameTaken(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "alice", "other@example.com", "password123")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestSignup_EmailRegistered(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "bob", "alice@example.com", "password123")
	assert.ErrorIs(t, err, ErrEmailRegistered)
}

func TestLogin(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	user, err := svc.Login(ctx, "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.LastLoginAt)
}

func TestLogin_WrongPassword(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	_, svc := newTestService(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_CorruptUserDocument(t *testing.T) {
	mr, svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("users:email:alice@example.com", "alice"))
	require.NoError(t, mr.Set("users:alice", "{not json"))

	_, err := svc.Login(ctx, "alice@example.com", "whatever")
	assert.ErrorIs(t, err, ErrCredentialsCorrupt)
}

func TestLogin_MissingHashFields(t *testing.T) {
	mr, svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("users:email:alice@example.com", "alice"))
	require.NoError(t, mr.Set("users:alice", `{"username":"alice","email":"alice@example.com"}`))

	_, err := svc.Login(ctx, "alice@example.com", "whatever")
	assert.ErrorIs(t, err, ErrCredentialsCorrupt)
}

func TestHashPassword_Deterministic(t *testing.T) {
	salt, hash, err := hashPassword("password123", "")
	require.NoError(t, err)
	require.NotEmpty(t, salt)

	// Same salt, same password, same hash.
	_, again, err := hashPassword("password123", salt)
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	// Fresh salt yields a different hash.
	otherSalt, otherHash, err := hashPassword("password123", "")
	require.NoError(t, err)
	assert.NotEqual(t, salt, otherSalt)
	assert.NotEqual(t, hash, otherHash)
}

func TestVerifyPassword(t *testing.T) {
	salt, hash, err := hashPassword("password123", "")
	require.NoError(t, err)

	ok, err := verifyPassword("password123", salt, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifyPassword("password124", salt, hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

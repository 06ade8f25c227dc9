// internal/auth/sessions_test.go
package auth

import (
	"context"
	"testing"
	"time"

	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionStore(t *testing.T, ttl time.Duration) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSessionStore(client, ttl, logger.NewTestLogger(t)), mr
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	store, _ := newTestSessionStore(t, time.Hour)
	ctx := context.Background()

	created, err := store.Create(ctx, "user-1", "ana@example.com", "recruiter")
	require.NoError(t, err)
	require.NotEmpty(t, created.Token)
	assert.NotEmpty(t, created.CreatedAt)

	got, err := store.Get(ctx, created.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.Equal(t, "recruiter", got.Role)
	assert.Equal(t, created.Token, got.Token)
}

func TestSessionStore_CreateSetsTTL(t *testing.T) {
	store, mr := newTestSessionStore(t, 30*time.Minute)

	created, err := store.Create(context.Background(), "user-1", "ana@example.com", "viewer")
	require.NoError(t, err)

	ttl := mr.TTL("session:" + created.Token)
	assert.Equal(t, 30*time.Minute, ttl)
}

func TestSessionStore_GetUnknownToken(t *testing.T) {
	store, _ := newTestSessionStore(t, time.Hour)

	_, err := store.Get(context.Background(), "no-such-token")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSessionInvalid, apperrors.CodeOf(err))
}

func TestSessionStore_GetExpiredToken(t *testing.T) {
	store, mr := newTestSessionStore(t, time.Minute)
	ctx := context.Background()

	created, err := store.Create(ctx, "user-1", "ana@example.com", "admin")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, created.Token)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSessionInvalid, apperrors.CodeOf(err))
}

func TestSessionStore_Delete(t *testing.T) {
	store, _ := newTestSessionStore(t, time.Hour)
	ctx := context.Background()

	created, err := store.Create(ctx, "user-1", "ana@example.com", "recruiter")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.Token))

	_, err = store.Get(ctx, created.Token)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSessionInvalid, apperrors.CodeOf(err))
}

func TestSessionStore_DeleteUnknownToken(t *testing.T) {
	store, _ := newTestSessionStore(t, time.Hour)

	assert.NoError(t, store.Delete(context.Background(), "never-issued"))
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong-pass"))
}

func TestHashPassword_TooShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)
}

// internal/auth/sessions.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/common/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Session is the server side record behind one bearer token.
type Session struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// SessionStore keeps sessions in Redis with a sliding expiry set at
// creation time.
type SessionStore struct {
	redisClient *redis.Client
	ttl         time.Duration
	logger      logger.Logger
}

func NewSessionStore(redisClient *redis.Client, ttl time.Duration, log logger.Logger) *SessionStore {
	return &SessionStore{
		redisClient: redisClient,
		ttl:         ttl,
		logger:      log.WithFields(map[string]interface{}{"component": "sessions"}),
	}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// Create opens a new session for the user and returns it with a fresh token.
func (s *SessionStore) Create(ctx context.Context, userID, email, role string) (*Session, error) {
	session := &Session{
		Token:     uuid.New().String(),
		UserID:    userID,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.redisClient.Set(ctx, sessionKey(session.Token), data, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Info("session created", map[string]interface{}{
		"userId": userID,
	})
	return session, nil
}

// Get resolves a bearer token to its session. Unknown or expired tokens
// yield a SESSION_INVALID error.
func (s *SessionStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.redisClient.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return nil, apperrors.NewSessionInvalid()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete invalidates a session. Deleting an unknown token is not an error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.redisClient.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

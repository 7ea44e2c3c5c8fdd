// Package session tracks register refresh sessions in redis. Each access token id (jti)
// maps to the employee it was issued to and a digest of its refresh token.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/Uptivity/justsell-pos-sub002/pkg/config"
	redisclient "github.com/Uptivity/justsell-pos-sub002/pkg/redis"
)

const refreshTokenBytes = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// backend is satisfied by *redisclient.Client.
type backend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SessionKey(accessID string) string
}

// AccessSessionChecker is what the auth middleware needs to reject revoked tokens.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

type Manager struct {
	backend backend
	ttl     time.Duration
}

// NewManager requires the refresh TTL to outlive the access token it renews.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	switch {
	case ttl <= 0:
		return nil, fmt.Errorf("refresh token ttl must be positive")
	case ttl <= accessTTL:
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{backend: client, ttl: ttl}, nil
}

// grant is the stored half of a refresh token. The raw token only ever leaves in the
// login or refresh response.
type grant string

func grantFor(employeeID uuid.UUID, refreshToken string) grant {
	sum := sha256.Sum256([]byte(refreshToken))
	return grant(employeeID.String() + ":" + hex.EncodeToString(sum[:]))
}

func (g grant) matches(other grant) bool {
	return subtle.ConstantTimeCompare([]byte(g), []byte(other)) == 1
}

// Generate opens a session for accessID and returns its refresh token.
func (m *Manager) Generate(ctx context.Context, accessID string, employeeID uuid.UUID) (string, error) {
	switch {
	case strings.TrimSpace(accessID) == "":
		return "", fmt.Errorf("access id is required")
	case employeeID == uuid.Nil:
		return "", fmt.Errorf("employee id is required")
	}
	return m.open(ctx, accessID, employeeID)
}

func (m *Manager) open(ctx context.Context, accessID string, employeeID uuid.UUID) (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	if err := m.backend.Set(ctx, m.backend.SessionKey(accessID), string(grantFor(employeeID, token)), m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Rotate trades a refresh token for a new access id and refresh token. The old session
// is closed, so replaying the same refresh token fails.
func (m *Manager) Rotate(ctx context.Context, oldAccessID string, employeeID uuid.UUID, provided string) (newAccessID, newToken string, err error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" || employeeID == uuid.Nil {
		return "", "", ErrInvalidRefreshToken
	}

	oldKey := m.backend.SessionKey(oldAccessID)
	stored, err := m.backend.Get(ctx, oldKey)
	if errors.Is(err, redislib.Nil) {
		return "", "", ErrInvalidRefreshToken
	}
	if err != nil {
		return "", "", err
	}
	if !grant(stored).matches(grantFor(employeeID, provided)) {
		return "", "", ErrInvalidRefreshToken
	}

	newAccessID = NewAccessID()
	if newToken, err = m.open(ctx, newAccessID, employeeID); err != nil {
		return "", "", err
	}
	if err := m.backend.Del(ctx, oldKey); err != nil {
		return "", "", err
	}
	return newAccessID, newToken, nil
}

// Revoke ends the session; the access token stops working on its next request.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.backend.Del(ctx, m.backend.SessionKey(accessID))
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, fmt.Errorf("access id is required")
	}
	_, err := m.backend.Get(ctx, m.backend.SessionKey(accessID))
	switch {
	case errors.Is(err, redislib.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// NewAccessID mints the jti shared by the JWT and its redis session key.
func NewAccessID() string {
	return uuid.NewString()
}

package abuse

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	// tokenLength is the length of the generated token in bytes (32 bytes = 64 hex chars)
	tokenLength = 32
	// TokenTTL is how long a session-bound token stays valid.
	TokenTTL = 24 * time.Hour
)

// TokenStore holds the per-session CSRF token that must round-trip through
// the form. Lookup returns "" without error when the session has no token.
type TokenStore interface {
	Issue(ctx context.Context, sessionID string) (string, error)
	Lookup(ctx context.Context, sessionID string) (string, error)
}

// GenerateToken creates a cryptographically secure random token.
func GenerateToken() (string, error) {
	bytes := make([]byte, tokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// VerifyToken compares the presented token with the session-bound one in
// constant time. Empty stored or presented tokens never verify.
func VerifyToken(presented, stored string) bool {
	if presented == "" || stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) == 1
}

// RedisTokenStore keeps session tokens in Redis with a TTL.
type RedisTokenStore struct {
	client *goredis.Client
	prefix string
}

// NewRedisTokenStore creates a Redis-backed token store.
func NewRedisTokenStore(client *goredis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client, prefix: "csrf:"}
}

// Issue returns the session's existing token or mints and stores a new one.
func (s *RedisTokenStore) Issue(ctx context.Context, sessionID string) (string, error) {
	key := s.prefix + sessionID

	existing, err := s.client.Get(ctx, key).Result()
	if err == nil && existing != "" {
		return existing, nil
	}
	if err != nil && !errors.Is(err, goredis.Nil) {
		return "", fmt.Errorf("csrf token lookup failed: %w", err)
	}

	token, err := GenerateToken()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, key, token, TokenTTL).Err(); err != nil {
		return "", fmt.Errorf("csrf token store failed: %w", err)
	}
	return token, nil
}

func (s *RedisTokenStore) Lookup(ctx context.Context, sessionID string) (string, error) {
	token, err := s.client.Get(ctx, s.prefix+sessionID).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("csrf token lookup failed: %w", err)
	}
	return token, nil
}

type memoryToken struct {
	token     string
	expiresAt time.Time
}

// MemoryTokenStore is the single-process fallback when Redis is not configured.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
}

// NewMemoryTokenStore creates the in-memory fallback store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]memoryToken)}
}

func (s *MemoryTokenStore) Issue(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.tokens[sessionID]; ok && time.Now().Before(entry.expiresAt) {
		return entry.token, nil
	}

	token, err := GenerateToken()
	if err != nil {
		return "", err
	}
	s.tokens[sessionID] = memoryToken{token: token, expiresAt: time.Now().Add(TokenTTL)}
	return token, nil
}

func (s *MemoryTokenStore) Lookup(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[sessionID]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.tokens, sessionID)
		return "", nil
	}
	return entry.token, nil
}

// NewTokenStore picks the Redis store when a client is available and falls
// back to the in-memory one otherwise.
func NewTokenStore(client *goredis.Client) TokenStore {
	if client != nil {
		return NewRedisTokenStore(client)
	}
	return NewMemoryTokenStore()
}

package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AccessToken tracks the remaining lifetime and call budget of one issued
// token. A token is usable iff now < ExpiresAt and AvailableCalls > 0.
type AccessToken struct {
	ID             string
	Owner          string
	ExpiresAt      time.Time
	AvailableCalls int
}

// TokenStore issues and consumes access tokens. Tokens live in memory only
// and are destroyed by process restart; there is no explicit revocation.
type TokenStore struct {
	mu     sync.Mutex
	tokens map[string]*AccessToken
	ttl    time.Duration
	quota  int
}

// NewTokenStore creates a store whose tokens expire ttl after issuance and
// allow callQuota authorized calls each.
func NewTokenStore(ttl time.Duration, callQuota int) *TokenStore {
	return &TokenStore{
		tokens: make(map[string]*AccessToken),
		ttl:    ttl,
		quota:  callQuota,
	}
}

// Issue creates a new token for user and returns its id.
func (s *TokenStore) Issue(user string, now time.Time) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[id] = &AccessToken{
		ID:             id,
		Owner:          user,
		ExpiresAt:      now.Add(s.ttl),
		AvailableCalls: s.quota,
	}
	return id
}

// ValidateAndConsume checks a token and, when usable, spends one call and
// returns the owning user. The expiry and exhaustion failures never
// decrement. Check and decrement happen under one lock so two concurrent
// requests cannot both spend the last call.
func (s *TokenStore) ValidateAndConsume(id string, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[id]
	if !ok {
		return "", ErrTokenNotFound
	}
	if !now.Before(t.ExpiresAt) {
		return "", ErrTokenExpired
	}
	if t.AvailableCalls <= 0 {
		return "", ErrTokenExhausted
	}

	t.AvailableCalls--
	return t.Owner, nil
}

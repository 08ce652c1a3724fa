package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/tendant/local-idp/pkg/errors"
)

// DefaultAuthorizationTTL is how long an unredeemed authorization code stays valid
const DefaultAuthorizationTTL = 10 * time.Minute

// AuthorizationStore remembers which audience each login code was issued
// for. A code can be redeemed once, and only before it expires.
type AuthorizationStore struct {
	mu    sync.Mutex
	codes *cache.Cache
	ttl   time.Duration
}

// NewAuthorizationStore creates a store whose codes expire after ttl. A
// non-positive ttl selects DefaultAuthorizationTTL.
func NewAuthorizationStore(ttl time.Duration) *AuthorizationStore {
	if ttl <= 0 {
		ttl = DefaultAuthorizationTTL
	}
	return &AuthorizationStore{
		codes: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Issue creates a fresh code for audience
func (s *AuthorizationStore) Issue(audience string) string {
	code := uuid.New().String()
	s.Put(code, audience)
	return code
}

// Put records code as an authorization for audience
func (s *AuthorizationStore) Put(code, audience string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.codes.Set(code, audience, cache.DefaultExpiration)
	slog.Debug("Authorization code stored", "audience", audience, "ttl", s.ttl)
}

// Redeem returns the audience of code and forgets the code. Unknown, expired
// and already redeemed codes fail with ErrCodeInvalidGrant.
func (s *AuthorizationStore) Redeem(code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, found := s.codes.Get(code)
	if !found {
		return "", errors.New(errors.ErrCodeInvalidGrant, "authorization code is invalid, expired or already used")
	}
	s.codes.Delete(code)

	audience, _ := value.(string)
	return audience, nil
}

// Pending returns how many codes are waiting to be redeemed
func (s *AuthorizationStore) Pending() int {
	s.codes.DeleteExpired()
	return s.codes.ItemCount()
}

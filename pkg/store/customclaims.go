package store

import (
	"log/slog"
	"sync"

	"github.com/tendant/local-idp/pkg/claims"
)

// CustomClaimsStore holds the custom claims added to every access token
type CustomClaimsStore struct {
	mu     sync.RWMutex
	fields []claims.CustomField
}

func NewCustomClaimsStore(fields []claims.CustomField) *CustomClaimsStore {
	return &CustomClaimsStore{fields: claims.CloneFields(fields)}
}

// Get returns a copy of the current custom claims, never nil
func (s *CustomClaimsStore) Get() []claims.CustomField {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.fields == nil {
		return []claims.CustomField{}
	}
	return claims.CloneFields(s.fields)
}

// Replace swaps the whole list of custom claims
func (s *CustomClaimsStore) Replace(fields []claims.CustomField) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fields = claims.CloneFields(fields)
	slog.Info("Access token custom claims replaced", "count", len(fields))
}

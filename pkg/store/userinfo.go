package store

import (
	"log/slog"
	"sync"

	"github.com/tendant/local-idp/pkg/claims"
)

// UserInfoStore holds the profile of the fake end user
type UserInfoStore struct {
	mu   sync.RWMutex
	info claims.UserInfo
}

// NewUserInfoStore creates a store holding info
func NewUserInfoStore(info claims.UserInfo) *UserInfoStore {
	info.CustomFields = claims.CloneFields(info.CustomFields)
	return &UserInfoStore{info: info}
}

// Get returns a copy of the current profile
func (s *UserInfoStore) Get() claims.UserInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := s.info
	info.CustomFields = claims.CloneFields(s.info.CustomFields)
	return info
}

// Update applies patch to the current profile and returns the result
func (s *UserInfoStore) Update(patch claims.UserInfoPatch) claims.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.info = claims.ApplyUserInfoPatch(s.info, patch)
	slog.Info("User info updated", "subject", s.info.Subject)

	info := s.info
	info.CustomFields = claims.CloneFields(s.info.CustomFields)
	return info
}

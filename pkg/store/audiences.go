package store

import (
	"log/slog"
	"sort"
	"sync"
)

// Audience is a named API together with the permissions granted on it
type Audience struct {
	Name        string   `json:"name" toml:"name"`
	Permissions []string `json:"permissions" toml:"permissions"`
}

// AudiencesStore maps audiences to the permissions put in their access tokens
type AudiencesStore struct {
	mu          sync.RWMutex
	permissions map[string][]string
}

// NewAudiencesStore creates a store seeded with audiences. A later entry for
// the same name replaces an earlier one.
func NewAudiencesStore(audiences []Audience) *AudiencesStore {
	s := &AudiencesStore{
		permissions: make(map[string][]string, len(audiences)),
	}
	for _, a := range audiences {
		s.permissions[a.Name] = copyStrings(a.Permissions)
	}
	return s
}

// Permissions returns the permissions of audience. An unknown audience has
// no permissions.
func (s *AudiencesStore) Permissions(audience string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyStrings(s.permissions[audience])
}

// Set replaces the permissions of audience
func (s *AudiencesStore) Set(audience string, permissions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.permissions[audience] = copyStrings(permissions)
	slog.Info("Permissions updated", "audience", audience, "permissions", permissions)
}

// All returns a copy of every audience and its permissions
func (s *AudiencesStore) All() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]string, len(s.permissions))
	for name, permissions := range s.permissions {
		out[name] = copyStrings(permissions)
	}
	return out
}

// Names returns the known audiences in sorted order
func (s *AudiencesStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.permissions))
	for name := range s.permissions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

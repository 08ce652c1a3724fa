package jwks

import (
	"log/slog"
	"sync"

	"github.com/tendant/local-idp/pkg/errors"
)

// DefaultGenerationAttempts is how many times rotation and revocation try to
// generate keys before giving up.
const DefaultGenerationAttempts = 3

// KeySetStore holds the current key set. Readers get immutable snapshots;
// rotate and revoke install a new set atomically.
type KeySetStore struct {
	mutex    sync.RWMutex
	current  JWKS
	generate KeyGenerator
	attempts int
}

// Option configures a KeySetStore
type Option func(*KeySetStore)

// WithKeyGenerator replaces the key generator, mostly for tests
func WithKeyGenerator(generate KeyGenerator) Option {
	return func(s *KeySetStore) {
		s.generate = generate
	}
}

// WithGenerationAttempts sets how many times rotate and revoke try key generation
func WithGenerationAttempts(attempts int) Option {
	return func(s *KeySetStore) {
		if attempts > 0 {
			s.attempts = attempts
		}
	}
}

// NewKeySetStore creates a store seeded with a freshly generated key set.
// An error here means the process cannot sign anything and should not start.
func NewKeySetStore(opts ...Option) (*KeySetStore, error) {
	s := &KeySetStore{
		generate: NewSigningKey,
		attempts: DefaultGenerationAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}

	initial, err := GenerateJWKS(s.generate)
	if err != nil {
		return nil, err
	}
	s.current = initial

	slog.Info("Generated initial key set", "kids", initial.Kids())
	return s, nil
}

// Snapshot returns a copy of the current key set
func (s *KeySetStore) Snapshot() JWKS {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.current.Clone()
}

// Find looks up a key by kid in the current key set
func (s *KeySetStore) Find(kid string) (JWK, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.current.Find(kid)
}

// RandomSigningKey picks a signing key from the current key set
func (s *KeySetStore) RandomSigningKey() (JWK, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.current.RandomSigningKey()
}

// SigningAlgorithm returns the alg of one current key
func (s *KeySetStore) SigningAlgorithm() (string, error) {
	key, err := s.RandomSigningKey()
	if err != nil {
		return "", err
	}
	return key.Alg, nil
}

// Rotate generates a new key and installs a set with it prepended and the
// oldest key dropped. The new key is generated before the lock is taken and
// applied to whatever set is current at install time, so concurrent rotations
// and revocations are never lost.
func (s *KeySetStore) Rotate() (JWKS, error) {
	var key JWK
	err := s.retry("rotate", func() error {
		var err error
		key, err = s.generate()
		return err
	})
	if err != nil {
		return JWKS{}, err
	}

	s.mutex.Lock()
	previous := s.current
	s.current = s.current.Push(key)
	installed := s.current.Clone()
	s.mutex.Unlock()

	slog.Info("Rotated signing keys", "new_kid", key.Kid, "dropped_kids", droppedKids(previous, installed))
	return installed, nil
}

// Revoke replaces every key with a newly generated one
func (s *KeySetStore) Revoke() (JWKS, error) {
	var next JWKS
	err := s.retry("revoke", func() error {
		var err error
		next, err = GenerateJWKS(s.generate)
		return err
	})
	if err != nil {
		return JWKS{}, err
	}

	s.mutex.Lock()
	s.current = next
	s.mutex.Unlock()

	slog.Info("Revoked all signing keys", "kids", next.Kids())
	return next.Clone(), nil
}

func (s *KeySetStore) retry(operation string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		slog.Warn("Key generation failed", "operation", operation, "attempt", attempt, "max_attempts", s.attempts, "error", err)
	}
	return errors.Wrapf(err, errors.ErrCodeKeyGeneration, "%s failed after %d attempts", operation, s.attempts)
}

func droppedKids(before, after JWKS) []string {
	var dropped []string
	for _, key := range before.Keys {
		if _, ok := after.Find(key.Kid); !ok {
			dropped = append(dropped, key.Kid)
		}
	}
	return dropped
}

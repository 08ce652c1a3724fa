package jwks

import (
	"math/rand/v2"

	"github.com/tendant/local-idp/pkg/errors"
)

// KeySetSize is the number of signing keys published at any time.
const KeySetSize = 3

// KeyGenerator produces one new signing key. NewSigningKey is the default.
type KeyGenerator func() (JWK, error)

// GenerateJWKS creates a key set of KeySetSize fresh keys. Either every key is
// generated or an error is returned; a partial set is never handed out.
func GenerateJWKS(generate KeyGenerator) (JWKS, error) {
	if generate == nil {
		generate = NewSigningKey
	}

	keys := make([]JWK, 0, KeySetSize)
	for range KeySetSize {
		key, err := generate()
		if err != nil {
			return JWKS{}, err
		}
		keys = append(keys, key)
	}
	return JWKS{Keys: keys}, nil
}

// Find returns the key with the given kid
func (s JWKS) Find(kid string) (JWK, bool) {
	for _, key := range s.Keys {
		if key.Kid == kid {
			return key, true
		}
	}
	return JWK{}, false
}

// RandomSigningKey picks one key uniformly at random for signing
func (s JWKS) RandomSigningKey() (JWK, error) {
	if len(s.Keys) == 0 {
		return JWK{}, errors.New(errors.ErrCodeEmptyKeySet, "key set is empty")
	}
	return s.Keys[rand.IntN(len(s.Keys))], nil
}

// Push returns a new set with key in front and the oldest keys dropped so the
// set never grows beyond KeySetSize.
func (s JWKS) Push(key JWK) JWKS {
	keys := make([]JWK, 0, KeySetSize)
	keys = append(keys, key)
	for _, k := range s.Keys {
		if len(keys) == KeySetSize {
			break
		}
		keys = append(keys, k)
	}
	return JWKS{Keys: keys}
}

// Rotate generates one new key and returns the set with it prepended and the
// oldest key removed. Tokens signed by the removed key no longer verify.
func (s JWKS) Rotate(generate KeyGenerator) (JWKS, error) {
	if generate == nil {
		generate = NewSigningKey
	}
	key, err := generate()
	if err != nil {
		return JWKS{}, err
	}
	return s.Push(key), nil
}

// Revoke discards every key and returns a completely new set.
func (s JWKS) Revoke(generate KeyGenerator) (JWKS, error) {
	return GenerateJWKS(generate)
}

// Kids lists the key ids in set order
func (s JWKS) Kids() []string {
	kids := make([]string, 0, len(s.Keys))
	for _, key := range s.Keys {
		kids = append(kids, key.Kid)
	}
	return kids
}

// Clone returns a copy whose key slice can be handed out without sharing
// backing storage with the receiver.
func (s JWKS) Clone() JWKS {
	return JWKS{Keys: append([]JWK(nil), s.Keys...)}
}

// Public returns the set with every private key handle stripped
func (s JWKS) Public() JWKS {
	keys := make([]JWK, 0, len(s.Keys))
	for _, key := range s.Keys {
		keys = append(keys, key.Public())
	}
	return JWKS{Keys: keys}
}

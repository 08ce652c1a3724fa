// Package jwks manages the signing keys of local-idp.
//
// Every signing key is an RSA-2048 key with its own self-signed X.509
// certificate, published as a JSON Web Key (RFC 7517) with kty, use, kid,
// alg, n, e and x5c members. The private key is carried alongside but is
// tagged json:"-" and is never serialized.
//
// # Key set
//
// A JWKS always holds exactly KeySetSize (3) keys. Tokens are signed with a
// key picked at random from the set, and verified by looking up the key named
// in the token's kid header.
//
//	store, err := jwks.NewKeySetStore()
//	if err != nil {
//		// no keys, nothing can be signed
//	}
//
//	key, _ := store.RandomSigningKey()
//	published := store.Snapshot().Public()
//
// # Rotation and revocation
//
// Rotate puts a new key at the front of the set and drops the last one.
// Tokens signed by the dropped key stop verifying immediately, so a client
// that needs a grace period should rotate less often than the token lifetime.
//
// Revoke replaces all three keys at once; every token issued before the call
// stops verifying.
//
// Key sets are values. Readers work on the snapshot they obtained and are
// never affected by a rotation that happens later.
package jwks

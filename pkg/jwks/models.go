package jwks

import (
	"crypto/rsa"
	"encoding/base64"

	"github.com/google/uuid"
	"github.com/tendant/local-idp/pkg/errors"
)

const (
	// KeyTypeRSA is the only key type this server issues
	KeyTypeRSA = "RSA"

	// UseSignature marks a key as a signing key
	UseSignature = "sig"

	// AlgorithmRS256 is the JWS algorithm bound to every generated key
	AlgorithmRS256 = "RS256"
)

// JWKS represents a JSON Web Key Set as defined in RFC 7517
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a JSON Web Key as defined in RFC 7517. Only the public
// members are serialized; the private key never leaves the process.
type JWK struct {
	// Key Type - "RSA" for RSA keys
	Kty string `json:"kty"`

	// Public Key Use - "sig" for signature
	Use string `json:"use"`

	// Key ID - random UUID, assigned once
	Kid string `json:"kid"`

	// Algorithm - "RS256" for RSA with SHA-256
	Alg string `json:"alg"`

	// RSA public key modulus (base64url encoded)
	N string `json:"n"`

	// RSA public key exponent (base64url encoded)
	E string `json:"e"`

	// X.509 certificate chain, base64 (not url) encoded DER
	X5c []string `json:"x5c"`

	// RSA private key
	PrivateKey *rsa.PrivateKey `json:"-"`
}

// NewSigningKey generates fresh key material and wraps it into a JWK with a
// new random key id.
func NewSigningKey() (JWK, error) {
	material, err := GenerateKeyMaterial()
	if err != nil {
		return JWK{}, err
	}
	return NewJWKFromMaterial(uuid.New().String(), material), nil
}

// NewJWKFromMaterial builds the JWK for already generated key material.
func NewJWKFromMaterial(kid string, material *KeyMaterial) JWK {
	publicKey := &material.PrivateKey.PublicKey
	return JWK{
		Kty:        KeyTypeRSA,
		Use:        UseSignature,
		Kid:        kid,
		Alg:        AlgorithmRS256,
		N:          EncodeRSAPublicKeyModulus(publicKey),
		E:          EncodeRSAPublicKeyExponent(publicKey),
		X5c:        []string{base64.StdEncoding.EncodeToString(material.CertificateDER)},
		PrivateKey: material.PrivateKey,
	}
}

// PublicKey returns the RSA public key of this JWK
func (k JWK) PublicKey() (*rsa.PublicKey, error) {
	if k.PrivateKey != nil {
		return &k.PrivateKey.PublicKey, nil
	}
	publicKey, err := DecodeRSAPublicKey(k.N, k.E)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeInternal, "invalid public key for kid %s", k.Kid)
	}
	return publicKey, nil
}

// Public returns a copy of the key without the private key handle
func (k JWK) Public() JWK {
	k.PrivateKey = nil
	k.X5c = append([]string(nil), k.X5c...)
	return k
}

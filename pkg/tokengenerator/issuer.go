package tokengenerator

import (
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tendant/local-idp/pkg/claims"
	"github.com/tendant/local-idp/pkg/errors"
	"github.com/tendant/local-idp/pkg/jwks"
)

// TokenTypeBearer is the token_type of every token response
const TokenTypeBearer = "Bearer"

// KeySource hands out the key to sign the next token with
type KeySource interface {
	RandomSigningKey() (jwks.JWK, error)
}

// UserInfoProvider supplies the current end-user profile
type UserInfoProvider interface {
	Get() claims.UserInfo
}

// CustomClaimsProvider supplies the custom claims added to access tokens
type CustomClaimsProvider interface {
	Get() []claims.CustomField
}

// TokenResponse is the body of a successful token endpoint response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	Scope       string `json:"scope"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Issuer builds and signs access tokens and ID tokens
type Issuer struct {
	keys         KeySource
	issuer       string
	userInfo     UserInfoProvider
	customClaims CustomClaimsProvider
	now          func() time.Time
}

// IssuerOption configures an Issuer
type IssuerOption func(*Issuer)

// WithIssuerClock overrides the time source used for iat and exp
func WithIssuerClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.now = now
	}
}

// NewIssuer creates an Issuer signing with keys from keys. The access token
// subject and the ID token profile come from userInfo.
func NewIssuer(keys KeySource, issuer string, userInfo UserInfoProvider, customClaims CustomClaimsProvider, opts ...IssuerOption) *Issuer {
	i := &Issuer{
		keys:         keys,
		issuer:       issuer,
		userInfo:     userInfo,
		customClaims: customClaims,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue creates a signed access token and ID token for audience. Both tokens
// are signed with the same randomly chosen key.
func (i *Issuer) Issue(audience string, grantType claims.GrantType, permissions []string, nonce *string) (*TokenResponse, error) {
	now := i.now()
	info := i.userInfo.Get()

	var custom []claims.CustomField
	if i.customClaims != nil {
		custom = i.customClaims.Get()
	}

	access := claims.NewClaims(claims.AccessTokenParams{
		Audience:     audience,
		Permissions:  permissions,
		Issuer:       i.issuer,
		Subject:      info.Subject,
		GrantType:    grantType,
		CustomClaims: custom,
		Now:          now,
	})

	id, err := claims.NewIDClaims(i.issuer, audience, info, nonce, now)
	if err != nil {
		return nil, err
	}

	key, err := i.keys.RandomSigningKey()
	if err != nil {
		slog.Error("No signing key available", "error", err)
		return nil, err
	}

	accessPayload, err := access.Map()
	if err != nil {
		return nil, err
	}
	accessToken, err := Sign(key, jwt.MapClaims(accessPayload))
	if err != nil {
		return nil, err
	}

	idPayload, err := id.Map()
	if err != nil {
		return nil, err
	}
	idToken, err := Sign(key, jwt.MapClaims(idPayload))
	if err != nil {
		return nil, err
	}

	slog.Debug("Issued tokens", "audience", audience, "grant_type", grantType, "kid", key.Kid)

	return &TokenResponse{
		AccessToken: accessToken,
		IDToken:     idToken,
		Scope:       access.Scope,
		ExpiresIn:   int64(claims.TokenLifetime / time.Second),
		TokenType:   TokenTypeBearer,
	}, nil
}

// Sign encodes payload as a compact JWS signed by key, with the key's alg and
// kid in the header.
func Sign(key jwks.JWK, payload jwt.Claims) (string, error) {
	if key.PrivateKey == nil {
		return "", errors.Newf(errors.ErrCodeSigning, "key %s has no private key", key.Kid)
	}

	method := jwt.GetSigningMethod(key.Alg)
	if method == nil {
		return "", errors.Newf(errors.ErrCodeSigning, "key %s has unsupported algorithm %q", key.Kid, key.Alg)
	}

	token := jwt.NewWithClaims(method, payload)
	token.Header["kid"] = key.Kid

	signed, err := token.SignedString(key.PrivateKey)
	if err != nil {
		slog.Error("Failed to sign JWT token", "kid", key.Kid, "err", err)
		return "", errors.Wrapf(err, errors.ErrCodeSigning, "failed to sign token with key %s", key.Kid)
	}
	return signed, nil
}

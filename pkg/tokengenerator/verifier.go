package tokengenerator

import (
	stderrors "errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tendant/local-idp/pkg/errors"
	"github.com/tendant/local-idp/pkg/jwks"
)

// KeyLookup resolves a kid against the current key set
type KeyLookup interface {
	Find(kid string) (jwks.JWK, bool)
}

// Verifier checks tokens issued by this server against the current key set
type Verifier struct {
	keys KeyLookup
	now  func() time.Time
}

// VerifierOption configures a Verifier
type VerifierOption func(*Verifier)

// WithVerifierClock overrides the time source used for exp and iat checks
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.now = now
	}
}

// NewVerifier creates a Verifier resolving keys through keys
func NewVerifier(keys KeyLookup, opts ...VerifierOption) *Verifier {
	v := &Verifier{keys: keys}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify validates tokenString and returns its claims. The signing key is
// picked by the kid header and must be in the current key set, so tokens
// signed by rotated or revoked keys fail with ErrCodeUnknownKid. The audience
// is only checked when audiences is non-empty.
func (v *Verifier) Verify(tokenString string, audiences []string) (jwt.MapClaims, error) {
	unverified, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTokenInvalid, "malformed token")
	}

	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return nil, errors.New(errors.ErrCodeMissingKid, "token header has no kid")
	}

	key, ok := v.keys.Find(kid)
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnknownKid, "no key with kid %s", kid).WithDetail("kid", kid)
	}

	method := jwt.GetSigningMethod(key.Alg)
	if method == nil {
		return nil, errors.Newf(errors.ErrCodeUnsupportedAlgorithm, "unsupported algorithm %q for kid %s", key.Alg, kid)
	}

	publicKey, err := key.PublicKey()
	if err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if v.now != nil {
		opts = append(opts, jwt.WithTimeFunc(v.now))
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return publicKey, nil
	}, opts...)
	if err != nil {
		return nil, mapValidationError(err)
	}

	if len(audiences) > 0 {
		tokenAudiences, err := claims.GetAudience()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidAudience, "invalid aud claim")
		}
		if !slices.ContainsFunc(tokenAudiences, func(aud string) bool { return slices.Contains(audiences, aud) }) {
			return nil, errors.Newf(errors.ErrCodeInvalidAudience, "token audience %v is not one of %v", []string(tokenAudiences), audiences)
		}
	}

	return claims, nil
}

func mapValidationError(err error) error {
	switch {
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return errors.Wrap(err, errors.ErrCodeTokenExpired, "token is expired")
	case stderrors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errors.Wrap(err, errors.ErrCodeInvalidSignature, "token signature is invalid")
	default:
		return errors.Wrap(err, errors.ErrCodeTokenInvalid, "token is invalid")
	}
}

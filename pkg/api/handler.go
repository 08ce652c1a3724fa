// Package api implements the HTTP endpoints of the identity provider: the
// token and login endpoints, the bearer protected userinfo endpoint, and the
// administration endpoints that change permissions, the user profile, custom
// claims and the signing keys at runtime.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tendant/local-idp/pkg/claims"
	"github.com/tendant/local-idp/pkg/jwks"
	"github.com/tendant/local-idp/pkg/metrics"
	"github.com/tendant/local-idp/pkg/store"
	"github.com/tendant/local-idp/pkg/tokengenerator"
	"github.com/tendant/local-idp/pkg/wellknown"
)

// Admin endpoint paths
const (
	CheckPath               = "/check"
	PermissionsPath         = "/permissions"
	AudiencePermissionsPath = "/permissions/{audience}"
	UserInfoTemplatePath    = "/oauth/token/user_info"
	CustomClaimsPath        = "/oauth/token/custom_claims"
	RotatePath              = "/rotate"
	RevokePath              = "/revoke"
)

// TokenIssuer creates signed token pairs
type TokenIssuer interface {
	Issue(audience string, grantType claims.GrantType, permissions []string, nonce *string) (*tokengenerator.TokenResponse, error)
}

// TokenVerifier validates bearer tokens against the current key set
type TokenVerifier interface {
	Verify(token string, audiences []string) (jwt.MapClaims, error)
}

// KeyManager changes the signing key set
type KeyManager interface {
	Rotate() (jwks.JWKS, error)
	Revoke() (jwks.JWKS, error)
}

// Client is the only OAuth2 client accepted by the token endpoint
type Client struct {
	ID     string
	Secret string
}

// Config holds the handler settings that do not come from a store
type Config struct {
	Client Client
}

// Handler serves every non well-known endpoint
type Handler struct {
	config         Config
	issuer         TokenIssuer
	verifier       TokenVerifier
	keys           KeyManager
	audiences      *store.AudiencesStore
	authorizations *store.AuthorizationStore
	userInfo       *store.UserInfoStore
	customClaims   *store.CustomClaimsStore
	metrics        *metrics.Metrics
}

// Option configures a Handler
type Option func(*Handler)

// WithMetrics records issuance, verification and key set changes on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// Stores groups the mutable state the handler reads and updates
type Stores struct {
	Audiences      *store.AudiencesStore
	Authorizations *store.AuthorizationStore
	UserInfo       *store.UserInfoStore
	CustomClaims   *store.CustomClaimsStore
}

// NewHandler creates a Handler
func NewHandler(config Config, issuer TokenIssuer, verifier TokenVerifier, keys KeyManager, stores Stores, opts ...Option) *Handler {
	h := &Handler{
		config:         config,
		issuer:         issuer,
		verifier:       verifier,
		keys:           keys,
		audiences:      stores.Audiences,
		authorizations: stores.Authorizations,
		userInfo:       stores.UserInfo,
		customClaims:   stores.CustomClaims,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers all endpoints on r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get(CheckPath, h.Check)

	r.Post(wellknown.TokenPath, h.Token)
	r.Post(wellknown.AuthorizationPath, h.Login)
	r.Get(wellknown.UserInfoPath, h.UserInfo)

	r.Get(PermissionsPath, h.ListPermissions)
	r.Post(PermissionsPath, h.SetPermissions)
	r.Get(AudiencePermissionsPath, h.GetPermissions)

	r.Get(UserInfoTemplatePath, h.GetUserInfoTemplate)
	r.Post(UserInfoTemplatePath, h.UpdateUserInfoTemplate)

	r.Get(CustomClaimsPath, h.GetCustomClaims)
	r.Post(CustomClaimsPath, h.ReplaceCustomClaims)

	r.Get(RotatePath, h.Rotate)
	r.Get(RevokePath, h.Revoke)
}

// CORSOptions returns the cross origin policy for the router. An empty
// origins list allows every origin.
func CORSOptions(origins []string) *cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}
}

// Check handles GET /check
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "ok")
}

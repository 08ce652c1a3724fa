package wellknown

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/local-idp/pkg/errors"
	"github.com/tendant/local-idp/pkg/jwks"
)

// KeySetSource provides the key set published on the JWKS endpoint
type KeySetSource interface {
	AlgorithmSource
	Snapshot() jwks.JWKS
}

// Handler provides HTTP handlers for well-known endpoints
type Handler struct {
	config Config
	keys   KeySetSource
}

// NewHandler creates a new well-known endpoints handler
func NewHandler(config Config, keys KeySetSource) *Handler {
	return &Handler{
		config: config,
		keys:   keys,
	}
}

// JWKS handles GET /.well-known/jwks.json
func (h *Handler) JWKS(w http.ResponseWriter, r *http.Request) {
	set := h.keys.Snapshot().Public()

	// Keys change on rotation, so clients must not cache the set
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	render.JSON(w, r, set)
}

// OpenIDConfiguration handles GET /.well-known/openid-configuration
func (h *Handler) OpenIDConfiguration(w http.ResponseWriter, r *http.Request) {
	baseURL := h.config.BaseURL
	if baseURL == "" {
		baseURL = RequestBaseURL(r)
	}

	metadata, err := NewOpenIDMetadata(h.config.Issuer, baseURL, h.keys)
	if err != nil {
		slog.Error("Failed to build OpenID configuration", "error", err)
		render.Status(r, errors.MapErrorCodeToHTTPStatus(errors.GetCode(err)))
		render.JSON(w, r, map[string]string{
			"error":             errors.MapErrorCodeToOAuthError(errors.GetCode(err)),
			"error_description": "no signing key available",
		})
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600") // Cache for 1 hour
	w.Header().Set("Access-Control-Allow-Origin", "*")      // Allow CORS for discovery

	render.JSON(w, r, metadata)
}

// RegisterRoutes registers all well-known endpoint routes on r
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get(JWKSPath, h.JWKS)
	r.Get(DiscoveryPath, h.OpenIDConfiguration)
}

// RequestBaseURL returns scheme://host of the request as seen by the client
func RequestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(forwarded, ",")[0]))
	}

	host := r.Host
	if forwarded := r.Header.Get("X-Forwarded-Host"); forwarded != "" {
		host = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return scheme + "://" + host
}

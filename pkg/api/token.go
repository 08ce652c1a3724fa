package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/local-idp/pkg/claims"
	"github.com/tendant/local-idp/pkg/errors"
)

// TokenRequest is the body of POST /oauth/token, either JSON or form encoded.
// Parameters it does not name are ignored. Audience is used by client_credentials; Code, Nonce and RedirectURI by
// authorization_code.
type TokenRequest struct {
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Audience     string `json:"audience"`
	Code         string `json:"code"`
	Nonce        string `json:"nonce"`
	RedirectURI  string `json:"redirect_uri"`
}

// LoginRequest is the body of POST /oauth/login
type LoginRequest struct {
	Audience string `json:"audience"`
}

// LoginResponse carries the authorization code to exchange at the token endpoint
type LoginResponse struct {
	Code string `json:"code"`
}

// Token handles POST /oauth/token
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTokenRequest(r)
	if err != nil {
		slog.Warn("Failed to decode token request", "error", err)
		renderError(w, r, errors.Wrap(err, errors.ErrCodeInvalidInput, "malformed token request"))
		return
	}

	grantType := claims.GrantType(req.GrantType)
	if !grantType.Valid() {
		h.recordIssue(req.GrantType, errors.ErrCodeUnsupportedGT)
		renderError(w, r, errors.Newf(errors.ErrCodeUnsupportedGT, "unsupported grant_type %q", req.GrantType))
		return
	}

	if !h.authenticateClient(req.ClientID, req.ClientSecret) {
		slog.Info("Rejected token request with wrong client credentials", "client_id", req.ClientID)
		h.recordIssue(req.GrantType, errors.ErrCodeUnauthorized)
		renderError(w, r, errors.Unauthorized("Unauthorized"))
		return
	}

	audience, nonce, err := h.resolveGrant(grantType, req)
	if err != nil {
		h.recordIssue(req.GrantType, errors.GetCode(err))
		renderError(w, r, err)
		return
	}

	permissions := h.audiences.Permissions(audience)
	response, err := h.issuer.Issue(audience, grantType, permissions, nonce)
	if err != nil {
		h.recordIssue(req.GrantType, errors.GetCode(err))
		renderError(w, r, err)
		return
	}
	h.recordIssue(req.GrantType, "")

	slog.Info("Issued tokens", "grant_type", grantType, "audience", audience, "permissions", len(permissions))

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	render.JSON(w, r, response)
}

func decodeTokenRequest(r *http.Request) (TokenRequest, error) {
	var req TokenRequest
	if render.GetRequestContentType(r) != render.ContentTypeForm {
		err := render.Decode(r, &req)
		return req, err
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	form := r.PostForm
	req = TokenRequest{
		GrantType:    form.Get("grant_type"),
		ClientID:     form.Get("client_id"),
		ClientSecret: form.Get("client_secret"),
		Audience:     form.Get("audience"),
		Code:         form.Get("code"),
		Nonce:        form.Get("nonce"),
		RedirectURI:  form.Get("redirect_uri"),
	}
	return req, nil
}

// resolveGrant returns the audience and nonce the tokens are issued for
func (h *Handler) resolveGrant(grantType claims.GrantType, req TokenRequest) (string, *string, error) {
	switch grantType {
	case claims.GrantTypeAuthorizationCode:
		if req.Code == "" {
			return "", nil, errors.InvalidInput("code", "is required")
		}
		audience, err := h.authorizations.Redeem(req.Code)
		if err != nil {
			return "", nil, err
		}
		if req.RedirectURI != "" {
			slog.Debug("Ignoring redirect_uri of token request", "redirect_uri", req.RedirectURI)
		}

		var nonce *string
		if req.Nonce != "" {
			nonce = &req.Nonce
		}
		return audience, nonce, nil

	default:
		if req.Audience == "" {
			return "", nil, errors.InvalidInput("audience", "is required")
		}
		return req.Audience, nil, nil
	}
}

func (h *Handler) authenticateClient(id, secret string) bool {
	idOK := subtle.ConstantTimeCompare([]byte(id), []byte(h.config.Client.ID)) == 1
	secretOK := subtle.ConstantTimeCompare([]byte(secret), []byte(h.config.Client.Secret)) == 1
	return idOK && secretOK
}

// Login handles POST /oauth/login. Every login succeeds; the returned code is
// bound to the requested audience.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, errors.Wrap(err, errors.ErrCodeInvalidInput, "malformed login request"))
		return
	}
	if req.Audience == "" {
		renderError(w, r, errors.InvalidInput("audience", "is required"))
		return
	}

	code := h.authorizations.Issue(req.Audience)
	slog.Info("Login accepted", "audience", req.Audience)

	render.JSON(w, r, LoginResponse{Code: code})
}

func (h *Handler) recordIssue(grantType string, code errors.ErrorCode) {
	if h.metrics == nil {
		return
	}
	if !claims.GrantType(grantType).Valid() {
		grantType = "unsupported"
	}
	var err error
	if code != "" {
		err = errors.New(code, "token request failed")
	}
	h.metrics.RecordIssue(grantType, err)
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/local-idp/pkg/claims"
	"github.com/tendant/local-idp/pkg/errors"
)

// PermissionsRequest is the body of POST /permissions
type PermissionsRequest struct {
	Audience    string   `json:"audience"`
	Permissions []string `json:"permissions"`
}

// CustomClaimsRequest is the body of POST /oauth/token/custom_claims and the
// response of both custom claims endpoints
type CustomClaimsRequest struct {
	CustomClaims []claims.CustomField `json:"custom_claims"`
}

// ListPermissions handles GET /permissions
func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.audiences.All())
}

// SetPermissions handles POST /permissions and returns every audience
func (h *Handler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	var req PermissionsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, errors.Wrap(err, errors.ErrCodeInvalidInput, "malformed permissions request"))
		return
	}
	if req.Audience == "" {
		renderError(w, r, errors.InvalidInput("audience", "is required"))
		return
	}

	h.audiences.Set(req.Audience, req.Permissions)
	render.JSON(w, r, h.audiences.All())
}

// GetPermissions handles GET /permissions/{audience}
func (h *Handler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	audience := chi.URLParam(r, "audience")
	render.JSON(w, r, h.audiences.Permissions(audience))
}

// GetUserInfoTemplate handles GET /oauth/token/user_info
func (h *Handler) GetUserInfoTemplate(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.userInfo.Get())
}

// UpdateUserInfoTemplate handles POST /oauth/token/user_info. Members absent
// from the body keep their current value.
func (h *Handler) UpdateUserInfoTemplate(w http.ResponseWriter, r *http.Request) {
	var patch claims.UserInfoPatch
	if err := render.DecodeJSON(r.Body, &patch); err != nil {
		renderError(w, r, errors.Wrap(err, errors.ErrCodeInvalidInput, "malformed user info"))
		return
	}
	render.JSON(w, r, h.userInfo.Update(patch))
}

// GetCustomClaims handles GET /oauth/token/custom_claims
func (h *Handler) GetCustomClaims(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, CustomClaimsRequest{CustomClaims: h.customClaims.Get()})
}

// ReplaceCustomClaims handles POST /oauth/token/custom_claims
func (h *Handler) ReplaceCustomClaims(w http.ResponseWriter, r *http.Request) {
	var req CustomClaimsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, errors.Wrap(err, errors.ErrCodeInvalidInput, "malformed custom claims"))
		return
	}
	for i, field := range req.CustomClaims {
		if field.Name == "" {
			renderError(w, r, errors.Newf(errors.ErrCodeInvalidInput, "custom claim %d has no name", i))
			return
		}
		if field.Value.String == nil && field.Value.Vec == nil {
			renderError(w, r, errors.Newf(errors.ErrCodeInvalidInput, "custom claim %s has no value", field.Name))
			return
		}
	}

	h.customClaims.Replace(req.CustomClaims)
	render.JSON(w, r, CustomClaimsRequest{CustomClaims: h.customClaims.Get()})
}

// Rotate handles GET /rotate
func (h *Handler) Rotate(w http.ResponseWriter, r *http.Request) {
	set, err := h.keys.Rotate()
	h.recordKeySetChange("rotate", err)
	if err != nil {
		renderError(w, r, err)
		return
	}
	slog.Info("Key set rotated via API", "kids", set.Kids())
	render.PlainText(w, r, "ok")
}

// Revoke handles GET /revoke
func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	set, err := h.keys.Revoke()
	h.recordKeySetChange("revoke", err)
	if err != nil {
		renderError(w, r, err)
		return
	}
	slog.Info("Key set revoked via API", "kids", set.Kids())
	render.PlainText(w, r, "ok")
}

func (h *Handler) recordKeySetChange(operation string, err error) {
	if h.metrics != nil {
		h.metrics.RecordKeySetChange(operation, err)
	}
}

package api

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/tendant/local-idp/pkg/claims"
	"github.com/tendant/local-idp/pkg/errors"
)

// UserInfo handles GET /userinfo. The bearer token must verify against the
// current key set; any audience is accepted.
func (h *Handler) UserInfo(w http.ResponseWriter, r *http.Request) {
	token := jwtauth.TokenFromHeader(r)
	if token == "" {
		h.recordVerification(errors.ErrCodeTokenInvalid)
		renderError(w, r, errors.New(errors.ErrCodeTokenInvalid, "missing bearer token"))
		return
	}

	if _, err := h.verifier.Verify(token, nil); err != nil {
		h.recordVerification(errors.GetCode(err))
		renderError(w, r, err)
		return
	}
	h.recordVerification("")

	body, err := claims.UserInfoClaims(h.userInfo.Get())
	if err != nil {
		renderError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	render.JSON(w, r, body)
}

func (h *Handler) recordVerification(code errors.ErrorCode) {
	if h.metrics != nil {
		h.metrics.RecordVerification(string(code))
	}
}

package api

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/local-idp/pkg/errors"
)

// ErrorResponse is the OAuth2 error body used by every endpoint
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// renderError writes err with the status and OAuth2 error of its code
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := errors.MapErrorCodeToHTTPStatus(code)

	description := http.StatusText(status)
	var e *errors.Error
	if stderrors.As(err, &e) && status < http.StatusInternalServerError {
		description = e.Message
	}

	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", r.URL.Path, "code", code, "error", err)
	} else {
		slog.Debug("Request rejected", "path", r.URL.Path, "code", code, "error", err)
	}

	if errors.IsVerificationFailure(err) {
		w.Header().Set("WWW-Authenticate", `Bearer error="`+errors.MapErrorCodeToOAuthError(code)+`"`)
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Error:            errors.MapErrorCodeToOAuthError(code),
		ErrorDescription: description,
	})
}

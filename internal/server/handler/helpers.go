package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/seojun-dev/geumbang/internal/domain"
	"github.com/seojun-dev/geumbang/internal/identity"
)

// IdentitySource resolves the caller's anonymous identity from a cookie
// token, minting a new one when needed.
type IdentitySource interface {
	Identify(token string) (uid string, minted bool)
}

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// pathParam extracts a named path parameter from the request using Go 1.22+
// built-in routing (http.Request.PathValue).
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}

// statusForError maps the domain error taxonomy onto HTTP status codes.
// Unknown errors report as 0 so callers can log and answer 500 themselves.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrSelfContact),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidMargin),
		errors.Is(err, domain.ErrNotConfirmed),
		errors.Is(err, domain.ErrMissingContact):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPricesUnavailable):
		return http.StatusServiceUnavailable
	default:
		return 0
	}
}

// callerIdentity resolves the caller's identity from the anonymous-identity
// cookie, setting a fresh 1-year cookie when a new token is minted.
func callerIdentity(w http.ResponseWriter, r *http.Request, ids IdentitySource) string {
	var token string
	if c, err := r.Cookie(identity.CookieName); err == nil {
		token = c.Value
	}

	uid, minted := ids.Identify(token)
	if minted {
		http.SetCookie(w, &http.Cookie{
			Name:     identity.CookieName,
			Value:    uid,
			Path:     "/",
			MaxAge:   int(identity.TokenTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return uid
}

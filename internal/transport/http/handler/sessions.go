package handler

import (
	"net/http"

	"github.com/go-signup-recorder/internal/transport/http/middleware"
)

// GetCurrentSession returns the signed-in user from the session claims.
// It must run behind middleware.Session.
func GetCurrentSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}
	var expiresAt int64
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Unix()
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{
		UserID:    claims.UserID,
		Email:     claims.Email,
		ExpiresAt: expiresAt,
	})
}

package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type storeChecker interface {
	Ensure(ctx context.Context) (bool, string)
}

// HealthHandler handles health-check endpoints.
type HealthHandler struct {
	store storeChecker
}

func NewHealthHandler(store storeChecker) *HealthHandler { return &HealthHandler{store: store} }

// Check serves /health-check/{action}: "ping" answers without I/O, "ensure"
// reads the sign-up database and container.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "ping":
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pong"})
	case "ensure":
		if h.store == nil {
			writeError(w, http.StatusServiceUnavailable, "sign-up store not configured")
			return
		}
		ok, msg := h.store.Ensure(r.Context())
		if !ok {
			writeError(w, http.StatusServiceUnavailable, msg)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: msg})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-signup-recorder/internal/domain"
	"github.com/go-signup-recorder/internal/infrastructure/google"
	"github.com/go-signup-recorder/internal/pkg/token"
	"github.com/go-signup-recorder/internal/pkg/validate"
	"github.com/go-signup-recorder/internal/transport/http/middleware"
)

// csrfCookieName is set by Google Identity Services and echoed in the form.
const csrfCookieName = "g_csrf_token"

type signUpRecorder interface {
	CreateSignUp(ctx context.Context, in domain.SignUpInput) (domain.Document, error)
}

type idTokenVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type sessionSigner interface {
	Sign(userID, email, sessionID string) (string, error)
	Expiry() time.Duration
}

type googleCallbackForm struct {
	Credential string `form:"credential" validate:"required"`
	CSRFToken  string `form:"g_csrf_token" validate:"required"`
}

// GoogleCallbackHandler receives Google Identity Services sign-in posts and
// records a sign-up event for each verified user.
type GoogleCallbackHandler struct {
	recorder signUpRecorder
	verifier idTokenVerifier
	signer   sessionSigner // optional
	logger   *slog.Logger

	// secureCookie sets Secure on the session cookie; off for plain-http development.
	secureCookie bool
}

func NewGoogleCallbackHandler(recorder signUpRecorder, verifier idTokenVerifier, signer sessionSigner, logger *slog.Logger, secureCookie bool) *GoogleCallbackHandler {
	return &GoogleCallbackHandler{recorder: recorder, verifier: verifier, signer: signer, logger: logger, secureCookie: secureCookie}
}

func (h *GoogleCallbackHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	form := googleCallbackForm{
		Credential: r.PostFormValue("credential"),
		CSRFToken:  r.PostFormValue(csrfCookieName),
	}
	if err := validate.Struct(form); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if c, err := r.Cookie(csrfCookieName); err != nil || c.Value != form.CSRFToken {
		writeError(w, http.StatusUnauthorized, "csrf token mismatch")
		return
	}

	payload, err := h.verifier.Verify(r.Context(), form.Credential)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUnauthorized) {
			status = http.StatusUnauthorized
		}
		writeError(w, status, err.Error())
		return
	}

	doc, err := h.recorder.CreateSignUp(r.Context(), domain.SignUpInput{
		UserID:        payload.Sub,
		Email:         payload.Email,
		EmailVerified: payload.EmailVerified,
		Name:          payload.Name,
		FamilyName:    payload.FamilyName,
		GivenName:     payload.GivenName,
		PictureURL:    payload.Picture,
		UserIP:        middleware.ClientIP(r),
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "record sign-up failed", "user_id", payload.Sub, "err", err)
		writeError(w, http.StatusInternalServerError, "could not record sign-up")
		return
	}
	if doc == nil {
		h.logger.WarnContext(r.Context(), "sign-up store returned an empty response", "user_id", payload.Sub)
	} else {
		h.logger.InfoContext(r.Context(), "sign-up recorded", "user_id", payload.Sub, "id", doc["id"])
	}

	if h.signer != nil {
		if err := h.setSessionCookie(w, payload); err != nil {
			h.logger.ErrorContext(r.Context(), "issue session failed", "user_id", payload.Sub, "err", err)
			writeError(w, http.StatusInternalServerError, "could not issue session")
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *GoogleCallbackHandler) setSessionCookie(w http.ResponseWriter, p *google.Payload) error {
	sessionID, err := token.NewSessionID()
	if err != nil {
		return err
	}
	signed, err := h.signer.Sign(p.Sub, p.Email, sessionID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(h.signer.Expiry().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

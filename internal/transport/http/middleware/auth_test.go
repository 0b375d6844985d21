package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	jwtinfra "github.com/go-signup-recorder/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]*jwtinfra.Claims

func (s stubVerifier) Verify(tok string) (*jwtinfra.Claims, error) {
	if c, ok := s[tok]; ok {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

func captureClaims(got **jwtinfra.Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestSession_MissingToken(t *testing.T) {
	rr := httptest.NewRecorder()
	Session(stubVerifier{})(http.HandlerFunc(okHandler)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"missing session"}`, rr.Body.String())
}

func TestSession_InvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "forged"})
	rr := httptest.NewRecorder()
	Session(stubVerifier{})(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSession_CookieInjectsClaims(t *testing.T) {
	want := &jwtinfra.Claims{UserID: "u1"}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good"})
	rr := httptest.NewRecorder()

	var got *jwtinfra.Claims
	Session(stubVerifier{"good": want})(captureClaims(&got)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
}

func TestSession_BearerHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rr := httptest.NewRecorder()

	var got *jwtinfra.Claims
	Session(stubVerifier{"good": {UserID: "u2"}})(captureClaims(&got)).ServeHTTP(rr, req)

	require.NotNil(t, got)
	assert.Equal(t, "u2", got.UserID)
}

package http

import (
	"context"
	"log/slog"

	"github.com/go-signup-recorder/internal/domain"
	"github.com/go-signup-recorder/internal/infrastructure/google"
	jwtinfra "github.com/go-signup-recorder/internal/infrastructure/jwt"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the minimal interface the router requires from the sign-up recorder.
type Recorder interface {
	Ensure(ctx context.Context) (bool, string)
	CreateSignUp(ctx context.Context, in domain.SignUpInput) (domain.Document, error)
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Recorder Recorder
	// Verifier is nil when GOOGLE_CLIENT_ID is unset; the callback route is
	// then not mounted.
	Verifier *google.Verifier
	// JWTProvider is nil when no key pair is configured; no sessions are issued.
	JWTProvider *jwtinfra.Provider
	Gatherer    prometheus.Gatherer
	Logger      *slog.Logger
}

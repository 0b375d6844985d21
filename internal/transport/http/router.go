package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-signup-recorder/internal/config"
	"github.com/go-signup-recorder/internal/infrastructure/metrics"
	"github.com/go-signup-recorder/internal/transport/http/handler"
	appmiddleware "github.com/go-signup-recorder/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. Background work
// started here (rate-limiter cleanup) stops when ctx is done.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(appmiddleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	healthH := handler.NewHealthHandler(deps.Recorder)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Check)
		r.Post("/health-check/{action}", healthH.Check)

		if deps.JWTProvider != nil {
			r.With(appmiddleware.Session(deps.JWTProvider)).Get("/sessions", handler.GetCurrentSession)
		}
	})

	if deps.Verifier != nil && deps.Recorder != nil {
		secureCookie := !cfg.IsDevelopment()
		// A nil *Provider must not reach the handler as a non-nil interface.
		var callbackH *handler.GoogleCallbackHandler
		if deps.JWTProvider != nil {
			callbackH = handler.NewGoogleCallbackHandler(deps.Recorder, deps.Verifier, deps.JWTProvider, logger, secureCookie)
		} else {
			callbackH = handler.NewGoogleCallbackHandler(deps.Recorder, deps.Verifier, nil, logger, secureCookie)
		}
		callbackRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(cfg.CallbackRatePerSec), cfg.CallbackBurst)
		r.With(callbackRL.Limit).Post("/auth/callback/google", callbackH.Callback)
	}

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	return r
}

// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/mlboard/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware

	// blobs serves presigned reads of the local blob backend; nil for S3.
	blobs http.Handler
}

// NewRouter creates a router. blobs may be nil.
func NewRouter(handler *Handler, mw *ChiMiddleware, blobs http.Handler) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw, blobs: blobs}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global Middleware Stack
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, ErrCodeNotFound, "No such endpoint", nil)
	})

	// Health Endpoints
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Dashboard Endpoints
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.Compression)

		r.Get("/movies/titles", router.handler.MovieTitles)
		r.Get("/movies/recommendations", router.handler.MovieRecommendations)

		r.Get("/forecast", router.handler.Forecast)

		r.Get("/divorce/questions", router.handler.DivorceQuestions)
		r.Post("/divorce/probability", router.handler.DivorceProbability)

		r.Get("/companies", router.handler.Companies)
		r.With(router.chiMiddleware.RateLimitCustom(RateLimitEnrich)).
			Get("/companies/{ticker}/profile", router.handler.CompanyProfile)
	})

	r.Handle("/metrics", promhttp.Handler())

	if router.blobs != nil {
		r.Handle("/blobs/*", router.blobs)
	}

	return r
}

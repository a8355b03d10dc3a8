// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

/*
Package middleware provides the HTTP middleware shared by the serving process.

Key Components:

  - RequestID: propagates or generates X-Request-ID and stores it in the
    request context for logging.Ctx
  - PrometheusMetrics: per-route request counters and latency histograms
  - Compression: gzip for clients that accept it; the forecast series is
    the main beneficiary

All middleware use the func(http.Handler) http.Handler shape so they can be
passed straight to chi's Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)

PrometheusMetrics labels requests with the chi route pattern rather than the
raw path, so /api/v1/companies/{ticker}/profile is one series no matter how
many tickers are requested. Requests that match no route are labelled
"unmatched".
*/
package middleware

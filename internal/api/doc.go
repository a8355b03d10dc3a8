// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

/*
Package api provides the HTTP JSON API consumed by the dashboard front end.

Endpoints (all under /api/v1):

  - GET  /health, /health/live, /health/ready
  - GET  /movies/titles
  - GET  /movies/recommendations?title=...&k=10
  - GET  /forecast?from=2018-01-01&to=2018-01-07&step=1
  - GET  /divorce/questions
  - POST /divorce/probability  {"responses": [10 ints in 0..4]}
  - GET  /companies
  - GET  /companies/{ticker}/profile

Outside the versioned prefix the router serves GET /metrics (Prometheus) and,
when the local blob backend is configured, GET /blobs/* for presigned reads.

Every JSON response uses the models.APIResponse envelope. Service errors are
mapped by kind:

	models.ErrLookupMiss           -> 404 NOT_FOUND
	models.ErrMalformedModelInput  -> 400 MODEL_INPUT_ERROR
	models.ErrArtifactNotFound     -> 503 ARTIFACT_UNAVAILABLE
	anything else                  -> 500 INTERNAL_ERROR

Request validation failures are 400 VALIDATION_ERROR with per-field details.
The 503 body tells the dashboard to render its unavailable state rather than
partial data.
*/
package api

// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package api

import (
	"context"
	"time"

	"github.com/tomtom215/mlboard/internal/divorce"
	"github.com/tomtom215/mlboard/internal/enrich"
	"github.com/tomtom215/mlboard/internal/forecast"
	"github.com/tomtom215/mlboard/internal/recommend"
)

// MovieService serves the recommendation page.
type MovieService interface {
	Titles(ctx context.Context) ([]string, error)
	Recommend(ctx context.Context, title string, k int) ([]recommend.Result, error)
}

// ForecastService serves the power consumption page.
type ForecastService interface {
	Summary(ctx context.Context, opts forecast.Options) (*forecast.Summary, error)
}

// DivorceService serves the questionnaire page.
type DivorceService interface {
	Questions(ctx context.Context) ([]divorce.Question, error)
	Estimate(ctx context.Context, responses []int) (*divorce.Estimate, error)
}

// ProfileService looks up company descriptions for the stock page.
type ProfileService interface {
	Profile(ctx context.Context, ticker string) (enrich.Profile, error)
}

// ArtifactStatus reports which artifacts are cached.
type ArtifactStatus interface {
	Loaded() []string
}

// Services groups the handler dependencies.
type Services struct {
	Movies    MovieService
	Forecast  ForecastService
	Divorce   DivorceService
	Profiles  ProfileService
	Artifacts ArtifactStatus

	// Expected is the number of artifacts the process serves; readiness
	// requires that many to be cached.
	Expected int
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers_health.go: health and readiness probes
//   - handlers_movies.go: titles and recommendations
//   - handlers_forecast.go: forecast summary
//   - handlers_divorce.go: questionnaire and probability
//   - handlers_companies.go: company list and profiles
type Handler struct {
	svc       Services
	startTime time.Time
	version   string
}

// NewHandler creates a handler over svc.
func NewHandler(svc Services, version string) *Handler {
	return &Handler{svc: svc, startTime: time.Now(), version: version}
}

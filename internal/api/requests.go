// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/mlboard/internal/forecast"
	"github.com/tomtom215/mlboard/internal/recommend"
)

// dateLayout is the query parameter format for forecast windows.
const dateLayout = "2006-01-02"

// RecommendationsRequest is the validated query of /movies/recommendations.
// K counts the selected movie itself, so K=10 yields nine recommendations.
type RecommendationsRequest struct {
	Title string `json:"title" validate:"required,max=512"`
	K     int    `json:"k" validate:"min=2,max=100"`
}

// ForecastRequest is the validated query of /forecast. The window runs from
// midnight of From to midnight of To, both inclusive, like the default week.
type ForecastRequest struct {
	From string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to" validate:"required_with=From,omitempty,datetime=2006-01-02"`
	Step int    `json:"step" validate:"min=0,max=10000"`
}

// ProfileRequest is the validated path of /companies/{ticker}/profile.
type ProfileRequest struct {
	Ticker string `json:"ticker" validate:"required,ticker"`
}

// getIntParam reads an integer query parameter. Missing or unparsable values
// return def; validation then enforces the range.
func getIntParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

func newRecommendationsRequest(r *http.Request) RecommendationsRequest {
	return RecommendationsRequest{
		Title: r.URL.Query().Get("title"),
		K:     getIntParam(r, "k", recommend.DefaultK),
	}
}

func newForecastRequest(r *http.Request) ForecastRequest {
	q := r.URL.Query()
	return ForecastRequest{From: q.Get("from"), To: q.Get("to"), Step: getIntParam(r, "step", 0)}
}

// options converts a validated request. Without From the default window is used.
func (req ForecastRequest) options() forecast.Options {
	opts := forecast.Options{Step: req.Step}
	if req.From == "" {
		return opts
	}
	from, _ := time.Parse(dateLayout, req.From)
	to, _ := time.Parse(dateLayout, req.To)
	opts.Window = forecast.Window{From: from, To: to}
	return opts
}

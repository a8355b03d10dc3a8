// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/mlboard/internal/recommend"
	"github.com/tomtom215/mlboard/internal/validation"
)

// RecommendationsResponse is the body of /movies/recommendations.
type RecommendationsResponse struct {
	Title           string             `json:"title"`
	Recommendations []recommend.Result `json:"recommendations"`
}

// MovieTitles lists the titles the recommendation page can select.
func (h *Handler) MovieTitles(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	titles, err := h.svc.Movies.Titles(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, start, titles)
}

// MovieRecommendations returns the movies most similar to ?title.
func (h *Handler) MovieRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := newRecommendationsRequest(r)
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	recs, err := h.svc.Movies.Recommend(r.Context(), req.Title, req.K)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, start, RecommendationsResponse{Title: req.Title, Recommendations: recs})
}

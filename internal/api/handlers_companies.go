// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/mlboard/internal/enrich"
	"github.com/tomtom215/mlboard/internal/validation"
)

// Companies lists the supported tickers.
func (h *Handler) Companies(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, time.Now(), enrich.Companies)
}

// CompanyProfile returns the best-effort profile of a ticker. An
// unreachable profile source is still a 200 with status "unavailable".
func (h *Handler) CompanyProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := ProfileRequest{Ticker: chi.URLParam(r, "ticker")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	p, err := h.svc.Profiles.Profile(r.Context(), req.Ticker)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, start, p)
}

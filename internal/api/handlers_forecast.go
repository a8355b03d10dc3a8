// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/mlboard/internal/validation"
)

// Forecast returns the train/test series, test predictions, RMSE, the
// zoom window and feature importance.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := newForecastRequest(r)
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	summary, err := h.svc.Forecast.Summary(r.Context(), req.options())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, start, summary)
}

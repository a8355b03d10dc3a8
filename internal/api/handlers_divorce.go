// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/mlboard/internal/divorce"
	"github.com/tomtom215/mlboard/internal/validation"
)

// DivorceQuestions lists the questionnaire items in response order.
func (h *Handler) DivorceQuestions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	qs, err := h.svc.Divorce.Questions(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, start, qs)
}

// DivorceProbability scores a questionnaire.
func (h *Handler) DivorceProbability(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req divorce.Questionnaire
	if err := decodeJSONBody(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	est, err := h.svc.Divorce.Estimate(r.Context(), req.Responses)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, start, est)
}

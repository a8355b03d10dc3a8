// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mlboard/internal/logging"
	"github.com/tomtom215/mlboard/internal/models"
	"github.com/tomtom215/mlboard/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeModelInput          = "MODEL_INPUT_ERROR"
	ErrCodeArtifactUnavailable = "ARTIFACT_UNAVAILABLE"
	ErrCodeInternal            = "INTERNAL_ERROR"
	ErrCodeRateLimited         = "RATE_LIMIT_EXCEEDED"
	ErrCodeBadRequest          = "BAD_REQUEST"
)

// maxRequestBody bounds POST bodies; the questionnaire is a few dozen bytes.
const maxRequestBody = 64 << 10

// respondJSON writes response as JSON with the given status.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess writes a 200 envelope around data.
func respondSuccess(w http.ResponseWriter, r *http.Request, start time.Time, data interface{}) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: metadata(r, start),
	})
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: metadata(r, time.Time{}),
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondValidationError writes a 400 with the per-field breakdown.
func respondValidationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	respondError(w, r, http.StatusBadRequest, ErrCodeValidation, verr.Error(), verr.Details())
}

// respondServiceError maps a service error to a status code and envelope.
// Only unexpected failures are logged at error level.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.Ctx(r.Context())
	switch {
	case errors.Is(err, models.ErrLookupMiss):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, models.ErrMalformedModelInput):
		var verr *validation.RequestValidationError
		if errors.As(err, &verr) {
			respondError(w, r, http.StatusBadRequest, ErrCodeModelInput, err.Error(), verr.Details())
			return
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeModelInput, err.Error(), nil)
	case errors.Is(err, models.ErrArtifactNotFound):
		logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Artifact unavailable")
		details := map[string]interface{}{}
		var ae *models.ArtifactError
		if errors.As(err, &ae) {
			details["key"] = ae.Key
		}
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeArtifactUnavailable,
			"The data behind this view is not available yet", details)
	default:
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Internal server error", nil)
	}
}

// decodeJSONBody decodes a bounded JSON body into v, rejecting unknown fields.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return errors.New("content type must be application/json")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}

func metadata(r *http.Request, start time.Time) models.Metadata {
	m := models.Metadata{
		Timestamp: time.Now(),
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
	if !start.IsZero() {
		m.QueryTimeMS = time.Since(start).Milliseconds()
	}
	return m
}

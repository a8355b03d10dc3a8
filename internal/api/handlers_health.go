// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/mlboard/internal/models"
)

// HealthStatus is the body of /health.
type HealthStatus struct {
	Status    string   `json:"status"`
	Version   string   `json:"version"`
	Uptime    float64  `json:"uptime_seconds"`
	Artifacts []string `json:"artifacts_loaded"`
	Expected  int      `json:"artifacts_expected"`
}

func (h *Handler) loaded() []string {
	if h.svc.Artifacts == nil {
		return []string{}
	}
	return h.svc.Artifacts.Loaded()
}

// Health reports uptime and which artifacts are cached. The process is
// "degraded" until every artifact has been fetched once.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	loaded := h.loaded()
	status := "healthy"
	if len(loaded) < h.svc.Expected {
		status = "degraded"
	}
	respondSuccess(w, r, start, HealthStatus{
		Status:    status,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Seconds(),
		Artifacts: loaded,
		Expected:  h.svc.Expected,
	})
}

// HealthLive returns 200 while the process is running.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, time.Now(), map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 503 until every artifact is cached.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	loaded := h.loaded()
	if len(loaded) < h.svc.Expected {
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status:   "error",
			Data:     map[string]interface{}{"ready": false, "artifacts_loaded": loaded},
			Metadata: metadata(r, time.Time{}),
			Error:    &models.APIError{Code: ErrCodeArtifactUnavailable, Message: "artifacts not loaded"},
		})
		return
	}
	respondSuccess(w, r, time.Now(), map[string]interface{}{"ready": true, "artifacts_loaded": loaded})
}

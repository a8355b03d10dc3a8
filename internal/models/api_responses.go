// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package models

import "time"

// APIResponse is the envelope of every JSON endpoint.
//
//	{"status": "success", "data": {...}, "metadata": {"timestamp": "..."}}
//	{"status": "error", "error": {"code": "NOT_FOUND", "message": "..."}, "metadata": {...}}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError is the machine-readable error body.
//
// Codes: VALIDATION_ERROR, NOT_FOUND, MODEL_INPUT_ERROR, ARTIFACT_UNAVAILABLE,
// INTERNAL_ERROR, RATE_LIMIT_EXCEEDED.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package validation

import (
	"strings"
	"testing"
)

type answers struct {
	Responses []int `json:"responses" validate:"required,len=10,dive,min=0,max=4"`
}

type tickerReq struct {
	Ticker string `json:"ticker" validate:"required,ticker"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantMsg   string
	}{
		{"valid answers", &answers{Responses: []int{0, 1, 2, 3, 4, 0, 1, 2, 3, 4}}, "", ""},
		{"missing answers", &answers{}, "responses", "is required"},
		{"too few answers", &answers{Responses: []int{1, 2}}, "responses", "exactly 10"},
		{"out of range", &answers{Responses: []int{0, 1, 2, 3, 5, 0, 1, 2, 3, 4}}, "responses[4]", "at most 4"},
		{"negative", &answers{Responses: []int{-1, 1, 2, 3, 4, 0, 1, 2, 3, 4}}, "responses[0]", "at least 0"},
		{"valid ticker", &tickerReq{Ticker: "AAPL"}, "", ""},
		{"lower-case ticker", &tickerReq{Ticker: "aapl"}, "ticker", "ticker symbol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := err.Fields[0].Field; got != tt.wantField {
				t.Errorf("field = %q, want %q", got, tt.wantField)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("message %q should contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator should return the same instance")
	}
}

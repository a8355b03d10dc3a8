// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package divorce

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/tomtom215/mlboard/internal/ml"
	"github.com/tomtom215/mlboard/internal/models"
)

// testBundle scores only the first (inverted) position, so a raw answer of
// 0 there means an adjusted 4 and a high probability.
func testBundle() *models.ClassificationBundle {
	mean := make([]float64, QuestionCount)
	scale := make([]float64, QuestionCount)
	coef := make([]float64, QuestionCount)
	features := make([]string, QuestionCount)
	for i := range mean {
		mean[i], scale[i] = 2, 1
		features[i] = "Q" + string(rune('A'+i))
	}
	coef[0] = 1
	return &models.ClassificationBundle{
		Model:             &ml.LogisticRegression{Coef: coef},
		Scaler:            &ml.StandardScaler{Mean: mean, Scale: scale},
		Features:          features,
		InvertedPositions: []int{0, 3, 6, 9},
	}
}

func TestInvert(t *testing.T) {
	for r := 0; r <= MaxResponse; r++ {
		got := Invert(r)
		if got != 4-r || got < 0 || got > MaxResponse {
			t.Errorf("Invert(%d) = %d", r, got)
		}
	}
}

func TestAdjust(t *testing.T) {
	b := testBundle()
	in := []int{0, 1, 2, 3, 4, 0, 1, 2, 3, 4}
	orig := append([]int(nil), in...)
	row, err := Adjust(b, in)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{4, 1, 2, 1, 4, 0, 3, 2, 3, 0}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("Adjust = %v, want %v", row, want)
	}
	if !reflect.DeepEqual(in, orig) {
		t.Error("Adjust modified its input")
	}
}

func TestPredictProbabilityRejectsMalformedInput(t *testing.T) {
	b := testBundle()
	tests := []struct {
		name      string
		responses []int
	}{
		{"nil", nil},
		{"too few", []int{1, 2, 3}},
		{"too many", []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
		{"above range", []int{0, 0, 0, 0, 5, 0, 0, 0, 0, 0}},
		{"below range", []int{0, -1, 0, 0, 0, 0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PredictProbability(b, tt.responses); !errors.Is(err, models.ErrMalformedModelInput) {
				t.Errorf("err = %v, want ErrMalformedModelInput", err)
			}
		})
	}
}

func TestPredictProbabilityUsesInversion(t *testing.T) {
	b := testBundle()
	low, err := PredictProbability(b, []int{4, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	high, err := PredictProbability(b, []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(high-1/(1+math.Exp(-2))) > 1e-12 || math.Abs(low-1/(1+math.Exp(2))) > 1e-12 {
		t.Errorf("low = %v, high = %v", low, high)
	}
}

func TestPredictProbabilityBoundedAndRepeatable(t *testing.T) {
	b := testBundle()
	b.Model.Coef = []float64{0.8, -1.2, 0.3, 2.5, -0.7, 1.1, 0.05, -3, 0.9, 1.6}
	b.Model.Intercept = -0.4

	rng := rand.New(rand.NewSource(7))
	samples := [][]int{
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{4, 4, 4, 4, 4, 4, 4, 4, 4, 4},
	}
	for i := 0; i < 5000; i++ {
		r := make([]int, QuestionCount)
		for j := range r {
			r[j] = rng.Intn(MaxResponse + 1)
		}
		samples = append(samples, r)
	}
	for _, r := range samples {
		p1, err := PredictProbability(b, r)
		if err != nil {
			t.Fatalf("%v: %v", r, err)
		}
		p2, _ := PredictProbability(b, r)
		if p1 != p2 {
			t.Fatalf("%v: %v then %v", r, p1, p2)
		}
		if p1 < 0 || p1 > 1 || math.IsNaN(p1) {
			t.Fatalf("%v: probability %v out of [0,1]", r, p1)
		}
	}
}

func TestBandOf(t *testing.T) {
	tests := []struct {
		p    float64
		want Band
	}{
		{0, BandLow},
		{0.29, BandLow},
		{0.31, BandUncertain},
		{0.4999, BandUncertain},
		{0.5, BandHigh},
		{1, BandHigh},
	}
	for _, tt := range tests {
		if got := BandOf(tt.p); got != tt.want {
			t.Errorf("BandOf(%v) = %s, want %s", tt.p, got, tt.want)
		}
	}
}

func TestQuestions(t *testing.T) {
	qs := Questions(testBundle())
	if len(qs) != QuestionCount {
		t.Fatalf("got %d questions", len(qs))
	}
	for _, q := range qs {
		wantInverted := q.Position%3 == 0
		if q.Inverted != wantInverted {
			t.Errorf("position %d inverted = %v", q.Position, q.Inverted)
		}
		if q.Text == "" {
			t.Errorf("position %d has no text", q.Position)
		}
	}
}

type fakeArtifacts struct {
	b   *models.ClassificationBundle
	err error
}

func (f fakeArtifacts) ClassificationBundle(context.Context) (*models.ClassificationBundle, error) {
	return f.b, f.err
}

func TestServiceEstimate(t *testing.T) {
	svc := NewService(fakeArtifacts{b: testBundle()})
	e, err := svc.Estimate(context.Background(), []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if e.Band != BandHigh {
		t.Errorf("estimate = %+v", e)
	}

	missing := NewService(fakeArtifacts{err: models.ErrArtifactNotFound})
	if _, err := missing.Estimate(context.Background(), make([]int, QuestionCount)); !errors.Is(err, models.ErrArtifactNotFound) {
		t.Errorf("err = %v", err)
	}
	if _, err := missing.Questions(context.Background()); !errors.Is(err, models.ErrArtifactNotFound) {
		t.Errorf("questions err = %v", err)
	}
}

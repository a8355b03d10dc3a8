// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package transform

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/tomtom215/mlboard/internal/ml"
	"github.com/tomtom215/mlboard/internal/models"
)

// DivorceTarget is the label column of the questionnaire file.
const DivorceTarget = "Divorce"

// DefaultInvertedPositions are the response positions scored as 4 - r.
var DefaultInvertedPositions = []int{0, 3, 6, 9}

// ClassificationOptions controls BuildClassificationBundle.
type ClassificationOptions struct {
	// TopFeatures is how many predictors survive the ranking before
	// DropFeature is removed.
	TopFeatures int
	// DropFeature names a predictor removed from the top list. Empty drops
	// the lowest-ranked one.
	DropFeature  string
	TestFraction float64
	Seed         int64
}

// ParseQuestionnaire returns the predictor names, the response matrix and
// the 0/1 targets of raw. Every column other than DivorceTarget is a predictor.
func ParseQuestionnaire(raw *models.RawTable) ([]string, [][]float64, []float64, error) {
	target, err := raw.ColumnIndex(DivorceTarget)
	if err != nil {
		return nil, nil, nil, err
	}
	var names []string
	var cols []int
	for i, c := range raw.Columns {
		if i != target {
			names = append(names, c)
			cols = append(cols, i)
		}
	}
	if len(names) == 0 || raw.Len() == 0 {
		return nil, nil, nil, fmt.Errorf("%w: %s has no predictors or no rows", models.ErrMissingRawData, raw.Source)
	}

	X := make([][]float64, raw.Len())
	y := make([]float64, raw.Len())
	for i, row := range raw.Rows {
		x := make([]float64, len(cols))
		for k, c := range cols {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[c]), 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("%w: %s row %d column %s: %v", models.ErrMissingRawData, raw.Source, i, names[k], err)
			}
			x[k] = v
		}
		X[i] = x
		t, err := strconv.ParseFloat(strings.TrimSpace(row[target]), 64)
		if err != nil || (t != 0 && t != 1) {
			return nil, nil, nil, fmt.Errorf("%w: %s row %d has target %q", models.ErrMissingRawData, raw.Source, i, row[target])
		}
		y[i] = t
	}
	return names, X, y, nil
}

// BuildClassificationBundle ranks every predictor by the absolute
// coefficient of a scaled logistic model trained on a seeded split, keeps
// the top TopFeatures minus DropFeature, and refits scaler and model on the
// full data restricted to those features, in rank order.
func BuildClassificationBundle(raw *models.RawTable, opts ClassificationOptions) (*models.ClassificationBundle, error) {
	names, X, y, err := ParseQuestionnaire(raw)
	if err != nil {
		return nil, err
	}
	if opts.TopFeatures < 2 || opts.TopFeatures > len(names) {
		return nil, fmt.Errorf("top features %d out of range for %d predictors", opts.TopFeatures, len(names))
	}

	trainIdx, testIdx := splitIndexes(len(X), opts.TestFraction, opts.Seed)
	Xtr, ytr := subset(X, y, trainIdx)
	Xte, yte := subset(X, y, testIdx)

	scaler := &ml.StandardScaler{}
	Xtr, err = scaler.FitTransform(Xtr)
	if err != nil {
		return nil, fmt.Errorf("scale questionnaire: %w", err)
	}
	full := ml.NewLogisticRegression()
	if err := full.Fit(Xtr, ytr); err != nil {
		return nil, fmt.Errorf("train ranking model: %w", err)
	}

	bundle := &models.ClassificationBundle{}
	if len(Xte) > 0 {
		scaled, err := scaler.Transform(Xte)
		if err != nil {
			return nil, err
		}
		bundle.HoldoutAccuracy, err = accuracy(full, scaled, yte)
		if err != nil {
			return nil, err
		}
	}

	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return math.Abs(full.Coef[order[a]]) > math.Abs(full.Coef[order[b]])
	})
	bundle.Ranking = make([]models.FeatureImportance, len(order))
	for i, j := range order {
		bundle.Ranking[i] = models.FeatureImportance{Feature: names[j], Importance: math.Abs(full.Coef[j])}
	}

	top := order[:opts.TopFeatures]
	dropAt := len(top) - 1
	if opts.DropFeature != "" {
		dropAt = -1
		for i, j := range top {
			if names[j] == opts.DropFeature {
				dropAt = i
			}
		}
		if dropAt < 0 {
			return nil, fmt.Errorf("drop feature %q is not among the top %d", opts.DropFeature, opts.TopFeatures)
		}
	}
	keep := make([]int, 0, len(top)-1)
	for i, j := range top {
		if i != dropAt {
			keep = append(keep, j)
		}
	}

	sel := make([][]float64, len(X))
	for i, row := range X {
		r := make([]float64, len(keep))
		for k, j := range keep {
			r[k] = row[j]
		}
		sel[i] = r
	}
	bundle.Scaler = &ml.StandardScaler{}
	scaled, err := bundle.Scaler.FitTransform(sel)
	if err != nil {
		return nil, fmt.Errorf("scale selected features: %w", err)
	}
	bundle.Model = ml.NewLogisticRegression()
	if err := bundle.Model.Fit(scaled, y); err != nil {
		return nil, fmt.Errorf("train divorce model: %w", err)
	}

	bundle.Features = make([]string, len(keep))
	for k, j := range keep {
		bundle.Features[k] = names[j]
	}
	for _, p := range DefaultInvertedPositions {
		if p < len(keep) {
			bundle.InvertedPositions = append(bundle.InvertedPositions, p)
		}
	}
	return bundle, nil
}

// splitIndexes shuffles 0..n-1 with seed and cuts off ceil(n*fraction) test rows.
func splitIndexes(n int, fraction float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n) //nolint:gosec // reproducible split
	nTest := int(math.Ceil(float64(n) * fraction))
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}
	test = append([]int(nil), perm[:nTest]...)
	train = append([]int(nil), perm[nTest:]...)
	sort.Ints(test)
	sort.Ints(train)
	return train, test
}

func subset(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for k, i := range idx {
		xs[k] = X[i]
		ys[k] = y[i]
	}
	return xs, ys
}

func accuracy(p ml.Predictor, X [][]float64, y []float64) (float64, error) {
	pred, err := p.Predict(X)
	if err != nil {
		return 0, err
	}
	var ok int
	for i := range pred {
		if pred[i] == y[i] {
			ok++
		}
	}
	return float64(ok) / float64(len(y)), nil
}

// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/mlboard/internal/ml"
	"github.com/tomtom215/mlboard/internal/models"
)

// CalendarFeatureNames are the columns produced by CalendarFeatures.
var CalendarFeatureNames = []string{"hour", "day", "month", "year", "quarter", "dayofyear"}

// timestampLayout is the Datetime format of the hourly load file.
const timestampLayout = "2006-01-02 15:04:05"

// ForecastOptions controls BuildRegressionBundle.
type ForecastOptions struct {
	// SplitDate starts the test period; earlier observations train.
	SplitDate time.Time
	Params    ml.GBParams
}

// CalendarFeatures returns hour, day of month, month, year, quarter and day
// of year for t.
func CalendarFeatures(t time.Time) []float64 {
	month := int(t.Month())
	return []float64{
		float64(t.Hour()),
		float64(t.Day()),
		float64(month),
		float64(t.Year()),
		float64((month-1)/3 + 1),
		float64(t.YearDay()),
	}
}

// ParseObservations reads Datetime and PJME_MW from raw and returns the
// observations in time order. Equal timestamps keep their file order.
func ParseObservations(raw *models.RawTable) ([]models.Observation, error) {
	cols, err := raw.ColumnIndexes("Datetime", "PJME_MW")
	if err != nil {
		return nil, err
	}
	obs := make([]models.Observation, 0, raw.Len())
	for i, row := range raw.Rows {
		ts, err := time.Parse(timestampLayout, strings.TrimSpace(row[cols["Datetime"]]))
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", models.ErrMissingRawData, raw.Source, i, err)
		}
		mw, err := strconv.ParseFloat(strings.TrimSpace(row[cols["PJME_MW"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", models.ErrMissingRawData, raw.Source, i, err)
		}
		obs = append(obs, models.Observation{Time: ts, MW: mw})
	}
	sort.SliceStable(obs, func(a, b int) bool { return obs[a].Time.Before(obs[b].Time) })
	return obs, nil
}

// BuildRegressionBundle derives calendar features, splits at SplitDate,
// trains a boosted regressor with early stopping on the test period and
// returns every piece the forecast view needs.
func BuildRegressionBundle(raw *models.RawTable, opts ForecastOptions) (*models.RegressionBundle, error) {
	obs, err := ParseObservations(raw)
	if err != nil {
		return nil, err
	}

	b := &models.RegressionBundle{
		Raw:          obs,
		FeatureNames: append([]string(nil), CalendarFeatureNames...),
		SplitDate:    opts.SplitDate,
	}
	for _, o := range obs {
		x := CalendarFeatures(o.Time)
		if o.Time.Before(opts.SplitDate) {
			b.TrainTimes = append(b.TrainTimes, o.Time)
			b.XTrain = append(b.XTrain, x)
			b.YTrain = append(b.YTrain, o.MW)
		} else {
			b.TestTimes = append(b.TestTimes, o.Time)
			b.XTest = append(b.XTest, x)
			b.YTest = append(b.YTest, o.MW)
		}
	}
	if len(b.XTrain) == 0 || len(b.XTest) == 0 {
		return nil, fmt.Errorf("%w: split at %s leaves %d training and %d test rows",
			models.ErrMissingRawData, opts.SplitDate.Format(time.DateOnly), len(b.XTrain), len(b.XTest))
	}

	model := ml.NewGBRegressor(opts.Params)
	if err := model.FitEval(b.XTrain, b.YTrain, b.XTest, b.YTest); err != nil {
		return nil, fmt.Errorf("train forecast model: %w", err)
	}
	b.Model = model

	imp := model.FeatureImportance()
	b.FeatureImportance = make([]models.FeatureImportance, len(imp))
	for i, v := range imp {
		b.FeatureImportance[i] = models.FeatureImportance{Feature: b.FeatureNames[i], Importance: v}
	}
	sort.Slice(b.FeatureImportance, func(i, j int) bool {
		return b.FeatureImportance[i].Feature < b.FeatureImportance[j].Feature
	})
	return b, nil
}

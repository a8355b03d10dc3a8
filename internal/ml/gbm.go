// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// GBParams configures GBRegressor.
type GBParams struct {
	Rounds         int
	LearningRate   float64
	MaxDepth       int
	Lambda         float64 // L2 penalty on leaf weights
	MinChildWeight float64
	MaxBins        int
	EarlyStopping  int     // rounds without eval improvement; 0 disables
	Subsample      float64 // row fraction per round, (0, 1]
	Seed           int64
}

// DefaultGBParams mirrors the usual gradient-boosting defaults with 1000 rounds.
func DefaultGBParams() GBParams {
	return GBParams{
		Rounds:         1000,
		LearningRate:   0.3,
		MaxDepth:       6,
		Lambda:         1,
		MinChildWeight: 1,
		MaxBins:        256,
		Subsample:      1,
	}
}

// TreeNode is one node of a regression tree. Leaves have Leaf set and
// carry Value already multiplied by the learning rate.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Leaf      bool
	Value     float64
}

// Tree is a flat regression tree; Nodes[0] is the root.
type Tree struct {
	Nodes []TreeNode
}

func (t *Tree) predict(row []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// GBRegressor is a gradient-boosted ensemble of histogram regression trees
// trained on squared error.
type GBRegressor struct {
	Params      GBParams
	NumFeatures int
	BaseScore   float64
	Trees       []Tree

	// BestIteration is the 0-based round with the lowest eval RMSE, or the
	// last round when no eval set was given.
	BestIteration int
	BestScore     float64

	// Gain holds the total split gain per feature.
	Gain []float64

	// EvalHistory is the eval RMSE after each round.
	EvalHistory []float64
}

// NewGBRegressor returns an untrained regressor.
func NewGBRegressor(p GBParams) *GBRegressor {
	return &GBRegressor{Params: p}
}

// Fit trains on (X, y) for Params.Rounds rounds with no early stopping.
func (m *GBRegressor) Fit(X [][]float64, y []float64) error {
	return m.FitEval(X, y, nil, nil)
}

// FitEval trains on (X, y) and monitors RMSE on (evalX, evalY). Training
// stops after Params.EarlyStopping rounds without improvement, and the
// ensemble is truncated to the best round.
func (m *GBRegressor) FitEval(X [][]float64, y []float64, evalX [][]float64, evalY []float64) error {
	p := m.Params
	if p.Rounds < 1 || p.MaxDepth < 1 || p.LearningRate <= 0 {
		return fmt.Errorf("gbm: rounds, max depth and learning rate must be positive")
	}
	if p.MaxBins < 2 {
		p.MaxBins = 256
	}
	if p.Subsample <= 0 || p.Subsample > 1 {
		p.Subsample = 1
	}
	cols, err := checkMatrix(X, -1)
	if err != nil {
		return err
	}
	if len(y) != len(X) {
		return fmt.Errorf("%w: %d rows, %d targets", ErrShapeMismatch, len(X), len(y))
	}
	hasEval := len(evalX) > 0
	if hasEval {
		if _, err := checkMatrix(evalX, cols); err != nil {
			return fmt.Errorf("eval set: %w", err)
		}
		if len(evalY) != len(evalX) {
			return fmt.Errorf("%w: eval set has %d rows, %d targets", ErrShapeMismatch, len(evalX), len(evalY))
		}
	}

	m.NumFeatures = cols
	m.Trees = nil
	m.Gain = make([]float64, cols)
	m.EvalHistory = nil

	var sum float64
	for _, v := range y {
		sum += v
	}
	m.BaseScore = sum / float64(len(y))

	hist := newBinnedMatrix(X, p.MaxBins)
	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = m.BaseScore
	}
	var evalPred []float64
	if hasEval {
		evalPred = make([]float64, len(evalY))
		for i := range evalPred {
			evalPred[i] = m.BaseScore
		}
	}

	rng := rand.New(rand.NewSource(p.Seed)) //nolint:gosec // reproducible sampling, not security
	grad := make([]float64, len(y))
	rows := make([]int, len(y))
	gains := make([][]float64, 0, p.Rounds)

	m.BestIteration = -1
	m.BestScore = math.Inf(1)

	for round := 0; round < p.Rounds; round++ {
		for i := range grad {
			grad[i] = pred[i] - y[i]
		}
		rows = rows[:0]
		for i := range y {
			if p.Subsample >= 1 || rng.Float64() < p.Subsample {
				rows = append(rows, i)
			}
		}
		if len(rows) == 0 {
			rows = append(rows, rng.Intn(len(y)))
		}

		b := treeBuilder{hist: hist, grad: grad, params: p, gain: make([]float64, cols)}
		tree := b.build(rows)
		m.Trees = append(m.Trees, tree)
		gains = append(gains, b.gain)

		for i, row := range X {
			pred[i] += tree.predict(row)
		}

		if !hasEval {
			m.BestIteration = round
			continue
		}
		var se float64
		for i, row := range evalX {
			evalPred[i] += tree.predict(row)
			d := evalPred[i] - evalY[i]
			se += d * d
		}
		rmse := math.Sqrt(se / float64(len(evalY)))
		m.EvalHistory = append(m.EvalHistory, rmse)
		if rmse < m.BestScore {
			m.BestScore = rmse
			m.BestIteration = round
		}
		if p.EarlyStopping > 0 && round-m.BestIteration >= p.EarlyStopping {
			break
		}
	}

	m.Trees = m.Trees[:m.BestIteration+1]
	for _, g := range gains[:m.BestIteration+1] {
		for f, v := range g {
			m.Gain[f] += v
		}
	}
	if !hasEval {
		m.BestScore = 0
	}
	return nil
}

// Predict returns one prediction per row of X.
func (m *GBRegressor) Predict(X [][]float64) ([]float64, error) {
	if m.NumFeatures == 0 {
		return nil, ErrNotFitted
	}
	if _, err := checkMatrix(X, m.NumFeatures); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	for i, row := range X {
		v := m.BaseScore
		for t := range m.Trees {
			v += m.Trees[t].predict(row)
		}
		out[i] = v
	}
	return out, nil
}

// FeatureImportance returns total gain per feature normalized to sum 1.
// All zeros are returned when no split was ever made.
func (m *GBRegressor) FeatureImportance() []float64 {
	out := make([]float64, len(m.Gain))
	var total float64
	for _, g := range m.Gain {
		total += g
	}
	if total == 0 {
		return out
	}
	for i, g := range m.Gain {
		out[i] = g / total
	}
	return out
}

// binnedMatrix stores X column-major as bin indices. A value v of feature f
// falls in bin b where b is the first index with v <= cuts[f][b], or
// len(cuts[f]) when v exceeds every cut.
type binnedMatrix struct {
	bins [][]uint16
	cuts [][]float64
}

func newBinnedMatrix(X [][]float64, maxBins int) *binnedMatrix {
	cols := len(X[0])
	bm := &binnedMatrix{bins: make([][]uint16, cols), cuts: make([][]float64, cols)}
	for f := 0; f < cols; f++ {
		col := Column(X, f)
		bm.cuts[f] = binCuts(col, maxBins)
		idx := make([]uint16, len(col))
		for i, v := range col {
			idx[i] = uint16(sort.SearchFloat64s(bm.cuts[f], v))
		}
		bm.bins[f] = idx
	}
	return bm
}

// binCuts returns at most maxBins-1 cut points. With few distinct values
// every value except the largest is a cut, so splits are exact.
func binCuts(col []float64, maxBins int) []float64 {
	sorted := append([]float64(nil), col...)
	sort.Float64s(sorted)
	uniq := sorted[:0:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			uniq = append(uniq, v)
		}
	}
	if len(uniq) <= maxBins {
		return uniq[:len(uniq)-1]
	}
	cuts := make([]float64, 0, maxBins-1)
	for b := 1; b < maxBins; b++ {
		v := sorted[b*len(sorted)/maxBins]
		if len(cuts) == 0 || v > cuts[len(cuts)-1] {
			cuts = append(cuts, v)
		}
	}
	if len(cuts) > 0 && cuts[len(cuts)-1] == uniq[len(uniq)-1] {
		cuts = cuts[:len(cuts)-1]
	}
	return cuts
}

type treeBuilder struct {
	hist   *binnedMatrix
	grad   []float64
	params GBParams
	gain   []float64
	nodes  []TreeNode
}

func (b *treeBuilder) build(rows []int) Tree {
	b.nodes = b.nodes[:0]
	b.grow(rows, 0)
	return Tree{Nodes: b.nodes}
}

// grow appends the subtree for rows and returns its node index. Squared
// loss has unit hessians, so H is the row count.
func (b *treeBuilder) grow(rows []int, depth int) int {
	var G float64
	for _, r := range rows {
		G += b.grad[r]
	}
	H := float64(len(rows))
	lambda := b.params.Lambda

	id := len(b.nodes)
	b.nodes = append(b.nodes, TreeNode{Leaf: true, Value: -G / (H + lambda) * b.params.LearningRate})
	if depth >= b.params.MaxDepth || len(rows) < 2 {
		return id
	}

	parentScore := G * G / (H + lambda)
	bestGain, bestFeature, bestBin := 0.0, -1, 0
	for f := range b.hist.bins {
		nb := len(b.hist.cuts[f]) + 1
		if nb < 2 {
			continue
		}
		gs := make([]float64, nb)
		hs := make([]float64, nb)
		col := b.hist.bins[f]
		for _, r := range rows {
			gs[col[r]] += b.grad[r]
			hs[col[r]]++
		}
		var gl, hl float64
		for bin := 0; bin < nb-1; bin++ {
			gl += gs[bin]
			hl += hs[bin]
			hr := H - hl
			if hl < b.params.MinChildWeight || hr < b.params.MinChildWeight {
				continue
			}
			gr := G - gl
			gain := 0.5 * (gl*gl/(hl+lambda) + gr*gr/(hr+lambda) - parentScore)
			if gain > bestGain {
				bestGain, bestFeature, bestBin = gain, f, bin
			}
		}
	}
	if bestFeature < 0 {
		return id
	}

	col := b.hist.bins[bestFeature]
	var left, right []int
	for _, r := range rows {
		if int(col[r]) <= bestBin {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	b.gain[bestFeature] += bestGain

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[id] = TreeNode{
		Feature:   bestFeature,
		Threshold: b.hist.cuts[bestFeature][bestBin],
		Left:      l,
		Right:     r,
	}
	return id
}

// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LogisticRegression is a binary classifier minimizing
//
//	C * sum(logloss) + 0.5 * ||Coef||^2
//
// with Newton steps. The intercept is not penalized. Targets must be 0 or 1.
type LogisticRegression struct {
	C       float64
	MaxIter int
	Tol     float64

	Coef      []float64
	Intercept float64
}

// NewLogisticRegression returns a classifier with C=1, 100 iterations and tol 1e-8.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{C: 1, MaxIter: 100, Tol: 1e-8}
}

// Fit trains the classifier.
func (m *LogisticRegression) Fit(X [][]float64, y []float64) error {
	p, err := checkMatrix(X, -1)
	if err != nil {
		return err
	}
	if len(y) != len(X) {
		return fmt.Errorf("%w: %d rows, %d targets", ErrShapeMismatch, len(X), len(y))
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return fmt.Errorf("target %d is %v, want 0 or 1", i, v)
		}
	}
	if m.C <= 0 {
		m.C = 1
	}
	if m.MaxIter <= 0 {
		m.MaxIter = 100
	}

	// w[0] is the intercept, w[1:] the coefficients.
	dim := p + 1
	w := make([]float64, dim)
	lambda := 1 / m.C

	grad := mat.NewVecDense(dim, nil)
	hess := mat.NewSymDense(dim, nil)
	step := mat.NewVecDense(dim, nil)
	xi := make([]float64, dim)
	xi[0] = 1

	for iter := 0; iter < m.MaxIter; iter++ {
		grad.Zero()
		hess.Zero()
		for i, row := range X {
			copy(xi[1:], row)
			prob := sigmoid(floats.Dot(w, xi))
			r := prob - y[i]
			h := prob * (1 - prob)
			for a := 0; a < dim; a++ {
				grad.SetVec(a, grad.AtVec(a)+r*xi[a])
				if xi[a] == 0 {
					continue
				}
				for b := a; b < dim; b++ {
					hess.SetSym(a, b, hess.At(a, b)+h*xi[a]*xi[b])
				}
			}
		}
		for a := 1; a < dim; a++ {
			grad.SetVec(a, grad.AtVec(a)+lambda*w[a])
			hess.SetSym(a, a, hess.At(a, a)+lambda)
		}
		// Keeps the system solvable when every row has saturated probabilities.
		hess.SetSym(0, 0, hess.At(0, 0)+1e-10)

		var chol mat.Cholesky
		if ok := chol.Factorize(hess); !ok {
			return fmt.Errorf("logistic regression: hessian not positive definite at iteration %d", iter)
		}
		if err := chol.SolveVecTo(step, grad); err != nil {
			return fmt.Errorf("logistic regression: %w", err)
		}

		t := 1.0
		base := m.objective(X, y, w, lambda)
		next := make([]float64, dim)
		for ; t > 1e-10; t /= 2 {
			for a := range next {
				next[a] = w[a] - t*step.AtVec(a)
			}
			if m.objective(X, y, next, lambda) <= base {
				break
			}
		}
		copy(w, next)

		if t*mat.Norm(step, math.Inf(1)) < m.Tol {
			break
		}
	}

	m.Intercept = w[0]
	m.Coef = append([]float64(nil), w[1:]...)
	return nil
}

func (m *LogisticRegression) objective(X [][]float64, y []float64, w []float64, lambda float64) float64 {
	var loss float64
	for i, row := range X {
		z := w[0] + floats.Dot(w[1:], row)
		// log(1+exp(z)) - y*z, computed without overflow.
		if z > 0 {
			loss += z + math.Log1p(math.Exp(-z)) - y[i]*z
		} else {
			loss += math.Log1p(math.Exp(z)) - y[i]*z
		}
	}
	return loss + 0.5*lambda*floats.Dot(w[1:], w[1:])
}

// PredictProba returns [P(class 0), P(class 1)] per row.
func (m *LogisticRegression) PredictProba(X [][]float64) ([][]float64, error) {
	if m.Coef == nil {
		return nil, ErrNotFitted
	}
	if _, err := checkMatrix(X, len(m.Coef)); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		p1 := sigmoid(m.Intercept + floats.Dot(m.Coef, row))
		out[i] = []float64{1 - p1, p1}
	}
	return out, nil
}

// Predict returns the class label (0 or 1) per row at threshold 0.5.
func (m *LogisticRegression) Predict(X [][]float64) ([]float64, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(proba))
	for i, p := range proba {
		if p[1] >= 0.5 {
			out[i] = 1
		}
	}
	return out, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

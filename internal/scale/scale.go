// Package scale implements per-column standardization. A State is fitted
// exactly once on the training partition of one model and then applied
// unchanged to every later input: training, evaluation, and single-sample
// inference all go through the same learned means and deviations.
package scale

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

// State holds the learned per-column mean and standard deviation.
// It is owned by exactly one model artifact and persisted inside it.
type State struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Fit learns column statistics from the training feature matrix.
// Columns with zero deviation keep std 1 so a constant column transforms
// to all zeros instead of dividing by zero.
func Fit(x [][]float64) (*State, error) {
	if len(x) == 0 {
		return nil, errors.New("scale: no training rows")
	}
	cols := len(x[0])
	s := &State{
		Mean: make([]float64, cols),
		Std:  make([]float64, cols),
	}

	col := make([]float64, len(x))
	for j := 0; j < cols; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		s.Mean[j] = stat.Mean(col, nil)
		s.Std[j] = stat.PopStdDev(col, nil)
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	return s, nil
}

// Transform standardizes a feature matrix. It never mutates its input.
func (s *State) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = s.TransformRow(row)
	}
	return out
}

// TransformRow standardizes a single feature vector.
func (s *State) TransformRow(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

// Columns returns the number of columns the state was fitted on.
func (s *State) Columns() int { return len(s.Mean) }

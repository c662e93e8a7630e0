package pipeline

import (
	"fmt"
	"math"
	"math/rand"
)

const (
	// DefaultTestFraction is the share of rows held out for evaluation.
	DefaultTestFraction = 0.2
	// DefaultSeed drives the split permutation and the ensemble rng.
	DefaultSeed int64 = 42

	minSplitRows = 5
)

// SplitResult is a disjoint train/test partition of a prepared matrix.
type SplitResult struct {
	XTrain, XTest [][]float64
	YTrain, YTest []float64
}

// Split partitions rows into train and test subsets by a seeded
// pseudo-random permutation. Identical inputs and seed always yield an
// identical partition; no row lands in both subsets. Fewer than 5 rows,
// or a fraction leaving either side empty, is an insufficient-data error
// rather than a silent degenerate split.
func Split(x [][]float64, y []float64, testFraction float64, seed int64) (*SplitResult, error) {
	n := len(x)
	if n != len(y) {
		return nil, fmt.Errorf("split: %d feature rows but %d targets", n, len(y))
	}
	if n < minSplitRows {
		return nil, fmt.Errorf("%w: %d rows, need at least %d to split", ErrInsufficientData, n, minSplitRows)
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, fmt.Errorf("split: test fraction must be in (0,1), got %v", testFraction)
	}

	// Test size rounds up, so a 0.2 fraction of 21 rows holds out 5.
	nTest := int(math.Ceil(float64(n) * testFraction))
	if nTest >= n {
		return nil, fmt.Errorf("%w: test fraction %v leaves no training rows", ErrInsufficientData, testFraction)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	res := &SplitResult{
		XTrain: make([][]float64, 0, n-nTest),
		XTest:  make([][]float64, 0, nTest),
		YTrain: make([]float64, 0, n-nTest),
		YTest:  make([]float64, 0, nTest),
	}
	for i, idx := range perm {
		if i < nTest {
			res.XTest = append(res.XTest, x[idx])
			res.YTest = append(res.YTest, y[idx])
		} else {
			res.XTrain = append(res.XTrain, x[idx])
			res.YTrain = append(res.YTrain, y[idx])
		}
	}
	return res, nil
}

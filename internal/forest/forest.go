// Package forest implements bagged CART ensembles: a binary classifier
// that averages per-tree class probabilities and a regressor that averages
// per-tree means. Training is seeded, so a fixed dataset and seed always
// produce the same ensemble.
package forest

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

// Mode selects the ensemble task.
type Mode string

const (
	Classification Mode = "classification"
	Regression     Mode = "regression"
)

// Config holds the fixed hyperparameters of an ensemble.
type Config struct {
	Trees           int   `json:"trees"`
	MaxDepth        int   `json:"max_depth"`
	MinSamplesSplit int   `json:"min_samples_split"`
	Seed            int64 `json:"seed"`
}

// Forest is a fitted (or fittable) tree ensemble. After Fit it is
// immutable and safe for concurrent prediction.
type Forest struct {
	Mode        Mode      `json:"mode"`
	Config      Config    `json:"config"`
	Roots       []*node   `json:"trees"`
	Importance  []float64 `json:"importance"`
	NumFeatures int       `json:"num_features"`
}

// New returns an unfitted forest. Zero config fields get defaults of
// 100 trees, depth 10, and min-split 2.
func New(mode Mode, cfg Config) *Forest {
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 10
	}
	if cfg.MinSamplesSplit <= 0 {
		cfg.MinSamplesSplit = 2
	}
	return &Forest{Mode: mode, Config: cfg}
}

// Fit trains the ensemble. Trees grow concurrently, each from its own
// bootstrap sample and its own rng seeded Seed+treeIndex so the result
// does not depend on goroutine scheduling.
func (f *Forest) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 {
		return errors.New("forest: no training rows")
	}
	if len(x) != len(y) {
		return fmt.Errorf("forest: %d feature rows but %d targets", len(x), len(y))
	}
	if f.Mode == Classification {
		if err := checkBinaryClasses(y); err != nil {
			return err
		}
	}

	n := len(x)
	p := len(x[0])
	f.NumFeatures = p

	maxFeatures := p
	if f.Mode == Classification {
		maxFeatures = sqrtFeatures(p)
	}

	f.Roots = make([]*node, f.Config.Trees)
	perTree := make([][]float64, f.Config.Trees)

	var wg sync.WaitGroup
	for i := 0; i < f.Config.Trees; i++ {
		wg.Add(1)
		go func(ti int) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(f.Config.Seed + int64(ti)))

			idx := make([]int, n)
			for j := range idx {
				idx[j] = rnd.Intn(n)
			}

			g := &grower{
				x:               x,
				y:               y,
				mode:            f.Mode,
				maxDepth:        f.Config.MaxDepth,
				minSamplesSplit: f.Config.MinSamplesSplit,
				maxFeatures:     maxFeatures,
				rnd:             rnd,
				importance:      make([]float64, p),
				total:           n,
			}
			f.Roots[ti] = g.grow(idx, 0)
			perTree[ti] = g.importance
		}(i)
	}
	wg.Wait()

	// Sum per-tree importances in tree order and normalise to 1.
	f.Importance = make([]float64, p)
	for _, imp := range perTree {
		for j, v := range imp {
			f.Importance[j] += v
		}
	}
	total := 0.0
	for _, v := range f.Importance {
		total += v
	}
	if total > 0 {
		for j := range f.Importance {
			f.Importance[j] /= total
		}
	}

	return nil
}

// Predict returns the ensemble mean for one feature vector. For
// regression this is the predicted value; for classification it equals
// PredictProba.
func (f *Forest) Predict(x []float64) float64 {
	sum := 0.0
	for _, root := range f.Roots {
		sum += root.predict(x)
	}
	return sum / float64(len(f.Roots))
}

// PredictProba returns the probability of class 1 for one feature vector.
func (f *Forest) PredictProba(x []float64) float64 {
	return f.Predict(x)
}

// PredictBatch predicts every row of a feature matrix.
func (f *Forest) PredictBatch(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = f.Predict(row)
	}
	return out
}

// FeatureImportances maps normalised importance weights onto the given
// column names. Weights are non-negative and sum to 1 when any split
// was accepted during training.
func (f *Forest) FeatureImportances(names []string) (map[string]float64, error) {
	if len(names) != f.NumFeatures {
		return nil, fmt.Errorf("forest: %d column names for %d features", len(names), f.NumFeatures)
	}
	out := make(map[string]float64, len(names))
	for j, name := range names {
		out[name] = f.Importance[j]
	}
	return out, nil
}

// Fitted reports whether Fit has completed.
func (f *Forest) Fitted() bool { return len(f.Roots) > 0 }

func checkBinaryClasses(y []float64) error {
	var saw0, saw1 bool
	for _, v := range y {
		switch v {
		case 0:
			saw0 = true
		case 1:
			saw1 = true
		default:
			return fmt.Errorf("forest: classification target must be 0 or 1, got %v", v)
		}
	}
	if !saw0 || !saw1 {
		return errors.New("forest: need at least 2 distinct target classes")
	}
	return nil
}

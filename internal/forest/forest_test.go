package forest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two well-separated clusters, 20 rows each.
func clusteredData(lowY, highY float64) ([][]float64, []float64) {
	var x [][]float64
	var y []float64
	for i := 0; i < 20; i++ {
		x = append(x, []float64{-5 + float64(i)*0.1, 1})
		y = append(y, lowY)
	}
	for i := 0; i < 20; i++ {
		x = append(x, []float64{5 + float64(i)*0.1, 1})
		y = append(y, highY)
	}
	return x, y
}

func TestClassifier_SeparableData(t *testing.T) {
	t.Parallel()
	x, y := clusteredData(0, 1)

	f := New(Classification, Config{Trees: 50, MaxDepth: 5, Seed: 42})
	require.NoError(t, f.Fit(x, y))
	require.True(t, f.Fitted())

	assert.Less(t, f.PredictProba([]float64{-4, 1}), 0.2)
	assert.Greater(t, f.PredictProba([]float64{6, 1}), 0.8)
}

func TestRegressor_SeparableData(t *testing.T) {
	t.Parallel()
	x, y := clusteredData(5, 50)

	f := New(Regression, Config{Trees: 50, MaxDepth: 5, Seed: 42})
	require.NoError(t, f.Fit(x, y))

	assert.InDelta(t, 5, f.Predict([]float64{-4, 1}), 2)
	assert.InDelta(t, 50, f.Predict([]float64{6, 1}), 2)
}

func TestFit_Deterministic(t *testing.T) {
	t.Parallel()
	x, y := clusteredData(0, 1)
	probes := [][]float64{{-4.5, 1}, {0.3, 1}, {5.5, 1}}

	a := New(Classification, Config{Trees: 30, MaxDepth: 6, Seed: 7})
	b := New(Classification, Config{Trees: 30, MaxDepth: 6, Seed: 7})
	require.NoError(t, a.Fit(x, y))
	require.NoError(t, b.Fit(x, y))

	for _, p := range probes {
		assert.Equal(t, a.Predict(p), b.Predict(p))
	}
	assert.Equal(t, a.Importance, b.Importance)
}

func TestFit_Errors(t *testing.T) {
	t.Parallel()

	f := New(Classification, Config{Trees: 5})
	assert.Error(t, f.Fit(nil, nil), "empty training set")

	assert.Error(t, f.Fit([][]float64{{1}, {2}}, []float64{1}), "length mismatch")

	assert.Error(t, f.Fit([][]float64{{1}, {2}}, []float64{1, 1}), "single class")

	assert.Error(t, f.Fit([][]float64{{1}, {2}}, []float64{0, 2}), "non-binary label")
}

func TestFeatureImportances(t *testing.T) {
	t.Parallel()
	x, y := clusteredData(0, 1)

	f := New(Classification, Config{Trees: 50, MaxDepth: 5, Seed: 42})
	require.NoError(t, f.Fit(x, y))

	imp, err := f.FeatureImportances([]string{"signal", "noise"})
	require.NoError(t, err)

	sum := 0.0
	for name, w := range imp {
		assert.GreaterOrEqual(t, w, 0.0, name)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	// Only the first column carries information.
	assert.Greater(t, imp["signal"], imp["noise"])

	_, err = f.FeatureImportances([]string{"only-one"})
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()
	f := New(Regression, Config{})
	assert.Equal(t, 100, f.Config.Trees)
	assert.Equal(t, 10, f.Config.MaxDepth)
	assert.Equal(t, 2, f.Config.MinSamplesSplit)
}

func TestPredictBatch(t *testing.T) {
	t.Parallel()
	x, y := clusteredData(5, 50)

	f := New(Regression, Config{Trees: 20, MaxDepth: 4, Seed: 1})
	require.NoError(t, f.Fit(x, y))

	preds := f.PredictBatch(x)
	require.Len(t, preds, len(x))
	for _, p := range preds {
		assert.False(t, math.IsNaN(p))
	}
}

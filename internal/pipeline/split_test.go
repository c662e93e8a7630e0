package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedRows(n int) ([][]float64, []float64) {
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = []float64{float64(i)}
		y[i] = float64(i)
	}
	return x, y
}

func TestSplit_Sizes(t *testing.T) {
	t.Parallel()
	x, y := numberedRows(10)

	res, err := Split(x, y, 0.2, DefaultSeed)
	require.NoError(t, err)
	assert.Len(t, res.XTest, 2)
	assert.Len(t, res.XTrain, 8)
	assert.Len(t, res.YTest, 2)
	assert.Len(t, res.YTrain, 8)
}

func TestSplit_DisjointAndComplete(t *testing.T) {
	t.Parallel()
	x, y := numberedRows(50)

	res, err := Split(x, y, 0.2, 7)
	require.NoError(t, err)

	seen := make(map[float64]int)
	for _, v := range res.YTrain {
		seen[v]++
	}
	for _, v := range res.YTest {
		seen[v]++
	}
	require.Len(t, seen, 50)
	for v, count := range seen {
		assert.Equal(t, 1, count, "row %v appears %d times", v, count)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	t.Parallel()
	x, y := numberedRows(30)

	a, err := Split(x, y, 0.2, DefaultSeed)
	require.NoError(t, err)
	b, err := Split(x, y, 0.2, DefaultSeed)
	require.NoError(t, err)

	assert.Equal(t, a.YTrain, b.YTrain)
	assert.Equal(t, a.YTest, b.YTest)

	c, err := Split(x, y, 0.2, DefaultSeed+1)
	require.NoError(t, err)
	assert.NotEqual(t, a.YTest, c.YTest)
}

func TestSplit_Errors(t *testing.T) {
	t.Parallel()

	x, y := numberedRows(4)
	_, err := Split(x, y, 0.2, DefaultSeed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))

	x, y = numberedRows(10)
	_, err = Split(x, y, 0, DefaultSeed)
	assert.Error(t, err)
	_, err = Split(x, y, 1, DefaultSeed)
	assert.Error(t, err)

	_, err = Split(x, y[:5], 0.2, DefaultSeed)
	assert.Error(t, err)
}

func TestSplit_TestSizeRoundsUp(t *testing.T) {
	t.Parallel()

	// 5 * 0.1 = 0.5 holds out one row.
	x, y := numberedRows(5)
	res, err := Split(x, y, 0.1, DefaultSeed)
	require.NoError(t, err)
	assert.Len(t, res.XTest, 1)
	assert.Len(t, res.XTrain, 4)

	// 21 * 0.2 = 4.2 holds out five rows, not four.
	x, y = numberedRows(21)
	res, err = Split(x, y, 0.2, DefaultSeed)
	require.NoError(t, err)
	assert.Len(t, res.XTest, 5)
	assert.Len(t, res.XTrain, 16)
}

package forest

import (
	"math"
	"math/rand"
	"sort"
)

// node is one CART tree node. Leaf values hold the mean target for
// regression and the class-1 fraction for classification, so a single
// node shape serves both modes.
type node struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Feature   int     `json:"f,omitempty"`
	Threshold float64 `json:"t,omitempty"`
	Value     float64 `json:"v"`
	Samples   int     `json:"n,omitempty"`
	Left      *node   `json:"l,omitempty"`
	Right     *node   `json:"r,omitempty"`
}

// grower carries the immutable training data plus per-tree state while a
// single tree is being built.
type grower struct {
	x    [][]float64
	y    []float64
	mode Mode

	maxDepth        int
	minSamplesSplit int
	maxFeatures     int

	rnd        *rand.Rand
	importance []float64
	total      int
}

func (g *grower) grow(idx []int, depth int) *node {
	n := &node{Samples: len(idx), Value: meanAt(g.y, idx)}

	if len(idx) < g.minSamplesSplit || depth >= g.maxDepth || pureAt(g.y, idx) {
		n.Leaf = true
		return n
	}

	feature, threshold, gain, left, right := g.bestSplit(idx)
	if feature < 0 {
		n.Leaf = true
		return n
	}

	g.importance[feature] += float64(len(idx)) / float64(g.total) * gain

	n.Feature = feature
	n.Threshold = threshold
	n.Left = g.grow(left, depth+1)
	n.Right = g.grow(right, depth+1)
	return n
}

type valueIndex struct {
	v float64
	i int
}

// bestSplit scans a random subset of features for the threshold with the
// largest impurity decrease. Returns feature -1 when no split improves on
// the parent node.
func (g *grower) bestSplit(idx []int) (feature int, threshold, gain float64, left, right []int) {
	p := len(g.x[0])
	feats := make([]int, p)
	for j := range feats {
		feats[j] = j
	}
	if g.maxFeatures > 0 && g.maxFeatures < p {
		g.rnd.Shuffle(p, func(a, b int) { feats[a], feats[b] = feats[b], feats[a] })
		feats = feats[:g.maxFeatures]
	}

	parent := g.impurityAt(idx)
	feature = -1

	sorted := make([]valueIndex, len(idx))
	for _, f := range feats {
		for k, ii := range idx {
			sorted[k] = valueIndex{g.x[ii][f], ii}
		}
		sort.Slice(sorted, func(a, b int) bool { return sorted[a].v < sorted[b].v })

		// Single left-to-right sweep over candidate thresholds using
		// running sums, so each feature costs O(n log n) for the sort.
		var lSum, lSq float64
		rSum, rSq := sumsAt(g.y, idx)
		n := float64(len(idx))

		for s := 1; s < len(sorted); s++ {
			yv := g.y[sorted[s-1].i]
			lSum += yv
			lSq += yv * yv
			rSum -= yv
			rSq -= yv * yv

			if sorted[s].v == sorted[s-1].v {
				continue
			}

			nl := float64(s)
			nr := n - nl
			impL := g.impurityFromSums(lSum, lSq, nl)
			impR := g.impurityFromSums(rSum, rSq, nr)
			gn := parent - (nl/n)*impL - (nr/n)*impR
			if gn > gain {
				gain = gn
				feature = f
				threshold = (sorted[s-1].v + sorted[s].v) / 2
			}
		}
	}

	if feature < 0 {
		return -1, 0, 0, nil, nil
	}

	for _, ii := range idx {
		if g.x[ii][feature] <= threshold {
			left = append(left, ii)
		} else {
			right = append(right, ii)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return -1, 0, 0, nil, nil
	}
	return feature, threshold, gain, left, right
}

// impurityAt computes gini (classification, y in {0,1}) or variance
// (regression) over the given sample indices.
func (g *grower) impurityAt(idx []int) float64 {
	sum, sq := sumsAt(g.y, idx)
	return g.impurityFromSums(sum, sq, float64(len(idx)))
}

func (g *grower) impurityFromSums(sum, sq, n float64) float64 {
	if n == 0 {
		return 0
	}
	if g.mode == Classification {
		p := sum / n
		return 2 * p * (1 - p)
	}
	mean := sum / n
	v := sq/n - mean*mean
	if v < 0 {
		v = 0 // floating-point noise on near-constant targets
	}
	return v
}

func sumsAt(y []float64, idx []int) (sum, sq float64) {
	for _, i := range idx {
		sum += y[i]
		sq += y[i] * y[i]
	}
	return sum, sq
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func pureAt(y []float64, idx []int) bool {
	first := y[idx[0]]
	for _, i := range idx[1:] {
		if y[i] != first {
			return false
		}
	}
	return true
}

func (n *node) predict(x []float64) float64 {
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

func sqrtFeatures(p int) int {
	k := int(math.Sqrt(float64(p)))
	if k < 1 {
		k = 1
	}
	return k
}

package pipeline

import (
	"math"
	"sort"

	"fittrack-ml/internal/forest"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

// ClassMetrics is the per-class slice of a classification report.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Importance is one ranked feature-importance entry.
type Importance struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// Report holds the held-out evaluation of one training run. Accuracy and
// Classes are populated for classification, R2 and RMSE for regression.
type Report struct {
	Task         string                  `json:"task"`
	Mode         forest.Mode             `json:"mode"`
	TrainSamples int                     `json:"train_samples"`
	TestSamples  int                     `json:"test_samples"`
	Accuracy     float64                 `json:"accuracy,omitempty"`
	Classes      map[string]ClassMetrics `json:"classes,omitempty"`
	R2           float64                 `json:"r2,omitempty"`
	RMSE         float64                 `json:"rmse,omitempty"`
	Importances  []Importance            `json:"importances"`
}

// evaluateClassifier scores binary predictions against held-out targets.
// Class names index the report map: classNames[0] for label 0,
// classNames[1] for label 1.
func evaluateClassifier(f *forest.Forest, xTest [][]float64, yTest []float64, classNames [2]string) (float64, map[string]ClassMetrics) {
	preds := make([]int, len(xTest))
	for i, row := range xTest {
		if f.PredictProba(row) > 0.5 {
			preds[i] = 1
		}
	}

	correct := 0
	// confusion[actual][predicted]
	var confusion [2][2]int
	for i, p := range preds {
		actual := 0
		if yTest[i] == 1 {
			actual = 1
		}
		confusion[actual][p]++
		if actual == p {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(yTest))

	classes := make(map[string]ClassMetrics, 2)
	for label := 0; label < 2; label++ {
		tp := confusion[label][label]
		fp := confusion[1-label][label]
		fn := confusion[label][1-label]

		var m ClassMetrics
		m.Support = confusion[label][0] + confusion[label][1]
		if tp+fp > 0 {
			m.Precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			m.Recall = float64(tp) / float64(tp+fn)
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		classes[classNames[label]] = m
	}
	return accuracy, classes
}

// evaluateRegressor computes R² and RMSE over held-out targets.
func evaluateRegressor(f *forest.Forest, xTest [][]float64, yTest []float64) (r2, rmse float64) {
	preds := f.PredictBatch(xTest)

	// R² is undefined when the held-out targets are constant (zero
	// variance): the 1 - res/tot form yields NaN or -Inf. Report 0
	// instead of letting a non-finite value reach the run history.
	r2 = stat.RSquaredFrom(preds, yTest, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		log.Warn().Msg("held-out targets have zero variance, reporting r2 = 0")
		r2 = 0
	}

	var ss float64
	for i := range preds {
		d := preds[i] - yTest[i]
		ss += d * d
	}
	rmse = math.Sqrt(ss / float64(len(preds)))
	return r2, rmse
}

// rankImportances orders feature weights descending for reporting. Ties
// break on name so the ranking is deterministic.
func rankImportances(f *forest.Forest, columns []string) ([]Importance, error) {
	weights, err := f.FeatureImportances(columns)
	if err != nil {
		return nil, err
	}
	ranked := make([]Importance, 0, len(weights))
	for name, w := range weights {
		ranked = append(ranked, Importance{Feature: name, Weight: w})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Weight != ranked[j].Weight {
			return ranked[i].Weight > ranked[j].Weight
		}
		return ranked[i].Feature < ranked[j].Feature
	})
	return ranked, nil
}

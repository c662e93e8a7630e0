package pipeline

import (
	"fmt"
	"math"

	"fittrack-ml/internal/artifact"
	"fittrack-ml/internal/forest"
	"fittrack-ml/internal/schema"
)

// CompletionPrediction is the workout_success inference result.
type CompletionPrediction struct {
	WillComplete bool    `json:"will_complete"`
	Probability  float64 `json:"probability"`
	Confidence   float64 `json:"confidence"`
}

// RecoveryPrediction is the recovery_time inference result.
type RecoveryPrediction struct {
	RecoveryDays  float64 `json:"recovery_days"`
	RecoveryHours float64 `json:"recovery_hours"`
}

// ProgressionPrediction is the weight_progression inference result.
type ProgressionPrediction struct {
	RecommendedIncrease float64 `json:"recommended_increase"`
	NewWeight           float64 `json:"new_weight"`
}

// CompletionFromProbability maps a class-1 probability onto the decision
// rule: strictly above 0.5 completes; confidence is 0 at the boundary and
// 1 at full certainty.
func CompletionFromProbability(p float64) CompletionPrediction {
	return CompletionPrediction{
		WillComplete: p > 0.5,
		Probability:  p,
		Confidence:   math.Abs(p-0.5) * 2,
	}
}

// PredictCompletion runs single-sample inference for the workout_success
// task against a loaded artifact.
func PredictCompletion(m *artifact.Model, features map[string]float64) (CompletionPrediction, error) {
	if m.Mode != forest.Classification {
		return CompletionPrediction{}, fmt.Errorf("model %s is not a classifier", m.Task)
	}
	scaled, err := inferenceVector(m, features, nil)
	if err != nil {
		return CompletionPrediction{}, err
	}
	return CompletionFromProbability(m.Forest.PredictProba(scaled)), nil
}

// PredictRecovery runs single-sample inference for the recovery_time
// task. A muscle group never seen during training expands to an all-zero
// indicator block rather than an error.
func PredictRecovery(m *artifact.Model, features map[string]float64, muscleGroup string) (RecoveryPrediction, error) {
	if m.Mode != forest.Regression {
		return RecoveryPrediction{}, fmt.Errorf("model %s is not a regressor", m.Task)
	}
	scaled, err := inferenceVector(m, features, map[string]string{"muscle_group": muscleGroup})
	if err != nil {
		return RecoveryPrediction{}, err
	}
	days := m.Forest.Predict(scaled)
	return RecoveryPrediction{
		RecoveryDays:  days,
		RecoveryHours: days * 24,
	}, nil
}

// PredictProgression runs single-sample inference for the
// weight_progression task. The new weight derives from the un-scaled
// previous_weight input plus the predicted increase.
func PredictProgression(m *artifact.Model, features map[string]float64) (ProgressionPrediction, error) {
	if m.Mode != forest.Regression {
		return ProgressionPrediction{}, fmt.Errorf("model %s is not a regressor", m.Task)
	}
	prev, ok := features["previous_weight"]
	if !ok {
		return ProgressionPrediction{}, fmt.Errorf("%w: feature previous_weight not supplied", ErrSchemaMismatch)
	}
	scaled, err := inferenceVector(m, features, nil)
	if err != nil {
		return ProgressionPrediction{}, err
	}
	increase := m.Forest.Predict(scaled)
	return ProgressionPrediction{
		RecommendedIncrease: increase,
		NewWeight:           prev + increase,
	}, nil
}

// inferenceVector expands named inputs into the artifact's column order
// and applies the persisted scaler state.
func inferenceVector(m *artifact.Model, numeric map[string]float64, categorical map[string]string) ([]float64, error) {
	vec, err := Vectorize(m.Schema, m.Levels, numeric, categorical)
	if err != nil {
		return nil, err
	}
	return m.Scaler.TransformRow(vec), nil
}

// Vectorize builds a raw (un-scaled) feature vector in the expanded
// column order the model was trained with. Every numeric feature must be
// supplied; categorical labels outside the training levels produce an
// all-zero indicator block.
func Vectorize(s schema.FeatureSchema, levels map[string][]string, numeric map[string]float64, categorical map[string]string) ([]float64, error) {
	var vec []float64
	for _, f := range s.Fields {
		switch f.Kind {
		case schema.Categorical:
			label := categorical[f.Name]
			for _, level := range levels[f.Name] {
				if label == level {
					vec = append(vec, 1)
				} else {
					vec = append(vec, 0)
				}
			}
		default:
			v, ok := numeric[f.Name]
			if !ok {
				return nil, fmt.Errorf("%w: feature %q not supplied", ErrSchemaMismatch, f.Name)
			}
			vec = append(vec, v)
		}
	}
	return vec, nil
}

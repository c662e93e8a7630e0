package pipeline

import (
	"fmt"

	"fittrack-ml/internal/dataset"
	"fittrack-ml/internal/forest"
	"fittrack-ml/internal/schema"
)

// Task names accepted by the command surface.
const (
	TaskWorkoutSuccess    = "workout_success"
	TaskRecoveryTime      = "recovery_time"
	TaskWeightProgression = "weight_progression"
)

// TaskSpec configures one training task. The three fitness tasks are
// values of this type run through the same generic pipeline; nothing
// task-specific lives outside its TaskSpec.
type TaskSpec struct {
	Name       string
	Schema     schema.FeatureSchema
	Target     string
	Mode       forest.Mode
	Filter     RowFilter
	Forest     forest.Config
	ClassNames [2]string // classification report labels for classes 0 and 1
}

// Tasks returns the task specs in their canonical training order.
func Tasks() []TaskSpec {
	return []TaskSpec{workoutSuccess(), recoveryTime(), weightProgression()}
}

// TaskByName resolves a task selector from the command surface.
func TaskByName(name string) (TaskSpec, error) {
	for _, t := range Tasks() {
		if t.Name == name {
			return t, nil
		}
	}
	return TaskSpec{}, fmt.Errorf("%w: %q", ErrUnknownTask, name)
}

// workoutSuccess predicts whether a user completes their planned workout
// from sleep, nutrition, and fatigue signals.
func workoutSuccess() TaskSpec {
	return TaskSpec{
		Name: TaskWorkoutSuccess,
		Schema: schema.New([]string{
			"sleep_hours",
			"sleep_quality",
			"calories",
			"protein",
			"fatigue_score",
			"days_since_rest",
			"planned_volume",
			"readiness_score",
			"injury_risk_score",
		}),
		Target: "workout_completed",
		Mode:   forest.Classification,
		Forest: forest.Config{
			Trees:           100,
			MaxDepth:        10,
			MinSamplesSplit: 5,
			Seed:            DefaultSeed,
		},
		ClassNames: [2]string{"failed", "completed"},
	}
}

// recoveryTime predicts recovery days per muscle group from workout
// intensity, sleep, and nutrition. The muscle group is a categorical
// field expanded into indicators during preparation.
func recoveryTime() TaskSpec {
	return TaskSpec{
		Name: TaskRecoveryTime,
		Schema: schema.New([]string{
			"workout_volume",
			"workout_intensity",
			"sleep_quality",
			"nutrition_quality",
		}, "muscle_group"),
		Target: "actual_recovery_days",
		Mode:   forest.Regression,
		Forest: forest.Config{
			Trees:           100,
			MaxDepth:        10,
			MinSamplesSplit: 2,
			Seed:            DefaultSeed,
		},
	}
}

// weightProgression predicts the optimal weight increase for an exercise.
// Only rows flagged successful take part in training.
func weightProgression() TaskSpec {
	return TaskSpec{
		Name: TaskWeightProgression,
		Schema: schema.New([]string{
			"previous_weight",
			"reps_achieved",
			"target_reps",
			"form_quality",
		}),
		Target: "weight_increase",
		Mode:   forest.Regression,
		Filter: func(row map[string]string) bool {
			return dataset.ParseBool(row["successful"])
		},
		Forest: forest.Config{
			Trees:           100,
			MaxDepth:        8,
			MinSamplesSplit: 2,
			Seed:            DefaultSeed,
		},
	}
}

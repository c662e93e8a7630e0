package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
)

// Generates a synthetic fitness-tracking CSV covering every column the
// three training tasks consume, with realistic correlations so trained
// models pick up actual signal. Roughly 3% of numeric cells are left
// empty to exercise median imputation.
func main() {
	var (
		outPath = flag.String("out", "data/fitness.csv", "Output CSV path")
		rows    = flag.Int("rows", 2000, "Number of rows to generate")
		seed    = flag.Int64("seed", 1, "Random seed")
	)
	flag.Parse()

	fmt.Printf("Generating sample fitness data...\n")
	fmt.Printf("  Rows: %d\n", *rows)
	fmt.Printf("  Seed: %d\n", *seed)
	fmt.Printf("  Output: %s\n", *outPath)

	if err := generate(*outPath, *rows, *seed); err != nil {
		log.Fatalf("Failed to generate data: %v", err)
	}

	fmt.Println("Done.")
}

var muscleGroups = []string{"chest", "back", "legs", "shoulders", "arms", "core"}

var protectedColumns = map[string]bool{
	"workout_completed":    true,
	"muscle_group":         true,
	"actual_recovery_days": true,
	"successful":           true,
	"weight_increase":      true,
}

var header = []string{
	// workout_success features
	"sleep_hours", "sleep_quality", "calories", "protein",
	"fatigue_score", "days_since_rest", "planned_volume",
	"readiness_score", "injury_risk_score", "workout_completed",
	// recovery_time features
	"workout_volume", "workout_intensity", "nutrition_quality",
	"muscle_group", "actual_recovery_days",
	// weight_progression features
	"previous_weight", "reps_achieved", "target_reps",
	"form_quality", "successful", "weight_increase",
}

func generate(path string, rows int, seed int64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}

	rnd := rand.New(rand.NewSource(seed))
	for i := 0; i < rows; i++ {
		if err := w.Write(sampleRow(rnd)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func sampleRow(rnd *rand.Rand) []string {
	sleepHours := 4 + rnd.Float64()*5
	sleepQuality := 1 + rnd.Intn(10)
	calories := 1500 + rnd.Intn(1500)
	protein := 60 + rnd.Intn(120)
	fatigue := 1 + rnd.Intn(10)
	daysSinceRest := rnd.Intn(7)
	plannedVolume := 8 + rnd.Intn(16)

	// Readiness follows sleep and fatigue; completion follows readiness.
	readiness := 10*sleepHours + float64(2*sleepQuality) - float64(5*fatigue) + rnd.Float64()*20
	injuryRisk := 1 + rnd.Intn(5)
	completed := readiness+rnd.Float64()*30 > 60

	volume := 8 + rnd.Intn(16)
	intensity := 1 + rnd.Intn(10)
	nutrition := 1 + rnd.Intn(10)
	group := muscleGroups[rnd.Intn(len(muscleGroups))]
	// Harder sessions on worse sleep recover slower.
	recoveryDays := 1 + float64(intensity)/4 + float64(volume)/12 - float64(sleepQuality)/8 + rnd.Float64()

	prevWeight := 30 + rnd.Float64()*90
	targetReps := 6 + rnd.Intn(7)
	repsAchieved := targetReps - 3 + rnd.Intn(7)
	formQuality := 1 + rnd.Intn(10)
	successful := repsAchieved >= targetReps && formQuality >= 5
	increase := 0.0
	if successful {
		increase = 1.25 * float64(1+rnd.Intn(3))
	}

	row := []string{
		ftoa(sleepHours), itoa(sleepQuality), itoa(calories), itoa(protein),
		itoa(fatigue), itoa(daysSinceRest), itoa(plannedVolume),
		ftoa(readiness), itoa(injuryRisk), strconv.FormatBool(completed),
		itoa(volume), itoa(intensity), itoa(nutrition),
		group, ftoa(recoveryDays),
		ftoa(prevWeight), itoa(repsAchieved), itoa(targetReps),
		itoa(formQuality), strconv.FormatBool(successful), ftoa(increase),
	}

	// Blank out a few feature cells. Target, filter, and categorical
	// columns stay populated: a missing target aborts training.
	for j := range row {
		if protectedColumns[header[j]] {
			continue
		}
		if rnd.Float64() < 0.03 {
			row[j] = ""
		}
	}
	return row
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
func itoa(v int) string     { return strconv.Itoa(v) }

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"fittrack-ml/internal/artifact"
	"fittrack-ml/internal/cfg"
	"fittrack-ml/internal/dataset"
	"fittrack-ml/internal/pipeline"
	"fittrack-ml/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	var (
		taskName     = flag.String("task", "", "Task to train: workout_success, recovery_time, weight_progression, or all")
		dataPath     = flag.String("data", "", "Path or URL of the training data CSV (overrides config)")
		modelsDir    = flag.String("models", "", "Directory for model artifacts (overrides config)")
		historyDir   = flag.String("history", "", "Directory for the run history database (overrides config)")
		testFraction = flag.Float64("test-fraction", 0, "Held-out fraction for evaluation (overrides config)")
		seed         = flag.Int64("seed", 0, "Random seed for the train/test split (overrides config)")
		logLevel     = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if *dataPath != "" {
		config.DatasetPath = *dataPath
	}
	if *modelsDir != "" {
		config.ModelsDir = *modelsDir
	}
	if *historyDir != "" {
		config.HistoryDir = *historyDir
	}
	if *testFraction > 0 {
		config.TestFraction = *testFraction
	}
	if *seed != 0 {
		config.Seed = *seed
	}

	if *taskName == "" {
		log.Fatal().Msg("-task is required: workout_success, recovery_time, weight_progression, or all")
	}
	if config.DatasetPath == "" {
		log.Fatal().Msg("no dataset given: use -data or set DATASET_PATH")
	}

	specs, err := resolveTasks(*taskName)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid task selector")
	}

	ds, err := dataset.Load(context.Background(), config.DatasetPath)
	if err != nil {
		log.Fatal().Err(err).Str("source", config.DatasetPath).Msg("dataset load failed")
	}

	var history *storage.RunStore
	if config.HistoryDir != "" {
		history, err = storage.Open(config.HistoryDir)
		if err != nil {
			log.Warn().Err(err).Msg("run history unavailable, continuing without it")
		} else {
			defer history.Close()
		}
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("FitTrack Model Training")
	fmt.Println(strings.Repeat("=", 60))

	// Each task is independently fallible: one failure is reported and
	// the remaining tasks still run.
	failed := 0
	for _, spec := range specs {
		if err := trainTask(spec, ds, config, history); err != nil {
			log.Error().Err(err).Str("task", spec.Name).Msg("task failed")
			failed++
		}
	}

	fmt.Println(strings.Repeat("=", 60))
	if failed > 0 {
		log.Error().Int("failed", failed).Int("total", len(specs)).Msg("training finished with failures")
		os.Exit(1)
	}
	fmt.Println("Training complete")
}

func resolveTasks(selector string) ([]pipeline.TaskSpec, error) {
	if selector == "all" {
		return pipeline.Tasks(), nil
	}
	spec, err := pipeline.TaskByName(selector)
	if err != nil {
		return nil, err
	}
	return []pipeline.TaskSpec{spec}, nil
}

func trainTask(spec pipeline.TaskSpec, ds *dataset.Dataset, config cfg.Settings, history *storage.RunStore) error {
	p := pipeline.New(spec,
		pipeline.WithTestFraction(config.TestFraction),
		pipeline.WithSeed(config.Seed),
	)

	result, err := p.Run(ds)
	if err != nil {
		return err
	}

	printReport(result.Report)

	path := artifact.Path(config.ModelsDir, spec.Name)
	if err := artifact.Save(result.Model, path); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}
	fmt.Printf("Model saved to %s\n", path)

	if history != nil {
		run := storage.TrainingRun{
			Task:         spec.Name,
			Rows:         ds.Len(),
			TrainSamples: result.Report.TrainSamples,
			TestSamples:  result.Report.TestSamples,
			Metrics:      reportMetrics(result.Report),
			ArtifactPath: path,
			Timestamp:    result.Model.TrainedAt,
		}
		if err := history.Append(run); err != nil {
			log.Warn().Err(err).Str("task", spec.Name).Msg("failed to record training run")
		}
	}
	return nil
}

func printReport(r *pipeline.Report) {
	fmt.Printf("\n%s\n", strings.Repeat("=", 50))
	fmt.Printf("%s - Training Results\n", strings.ToUpper(strings.ReplaceAll(r.Task, "_", " ")))
	fmt.Println(strings.Repeat("=", 50))

	if r.Classes != nil {
		fmt.Printf("Accuracy: %.2f%%\n", r.Accuracy*100)
		fmt.Printf("Training samples: %d\n", r.TrainSamples)
		fmt.Printf("Test samples: %d\n\n", r.TestSamples)

		fmt.Println("Classification Report:")
		fmt.Printf("%-12s %10s %10s %10s %10s\n", "class", "precision", "recall", "f1", "support")
		for _, name := range []string{"failed", "completed"} {
			m, ok := r.Classes[name]
			if !ok {
				continue
			}
			fmt.Printf("%-12s %10.2f %10.2f %10.2f %10d\n", name, m.Precision, m.Recall, m.F1, m.Support)
		}
	} else {
		fmt.Printf("R² Score: %.3f\n", r.R2)
		fmt.Printf("RMSE: %.2f\n", r.RMSE)
		fmt.Printf("Training samples: %d\n", r.TrainSamples)
	}

	fmt.Println("\nFeature Importance:")
	for _, imp := range r.Importances {
		fmt.Printf("  %-24s %.4f\n", imp.Feature, imp.Weight)
	}
}

func reportMetrics(r *pipeline.Report) map[string]float64 {
	if r.Classes != nil {
		return map[string]float64{"accuracy": r.Accuracy}
	}
	return map[string]float64{"r2": r.R2, "rmse": r.RMSE}
}

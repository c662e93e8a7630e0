// Package pipeline implements the generic tabular-model training flow:
// prepare -> split -> scale -> fit -> evaluate -> artifact. One Pipeline
// instance serves one task invocation and holds no process-wide state;
// the three fitness tasks are TaskSpec values fed through the same code.
package pipeline

import (
	"fmt"
	"time"

	"fittrack-ml/internal/artifact"
	"fittrack-ml/internal/dataset"
	"fittrack-ml/internal/forest"
	"fittrack-ml/internal/scale"

	"github.com/rs/zerolog/log"
)

// Pipeline trains one task against one dataset.
type Pipeline struct {
	spec         TaskSpec
	testFraction float64
	seed         int64
}

// Option adjusts pipeline defaults.
type Option func(*Pipeline)

// WithTestFraction overrides the held-out fraction (default 0.2).
func WithTestFraction(f float64) Option {
	return func(p *Pipeline) { p.testFraction = f }
}

// WithSeed overrides the split seed (default 42).
func WithSeed(seed int64) Option {
	return func(p *Pipeline) { p.seed = seed }
}

// New builds a pipeline for one task invocation.
func New(spec TaskSpec, opts ...Option) *Pipeline {
	p := &Pipeline{
		spec:         spec,
		testFraction: DefaultTestFraction,
		seed:         DefaultSeed,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Result pairs the persisted-ready model with its evaluation report.
type Result struct {
	Model  *artifact.Model
	Report *Report
}

// Run executes the full training flow. Any failure is terminal for the
// run; no degenerate model is ever returned.
func (p *Pipeline) Run(ds *dataset.Dataset) (*Result, error) {
	start := time.Now()
	log.Info().Str("task", p.spec.Name).Int("rows", ds.Len()).Msg("training started")

	pm, err := Prepare(ds, p.spec.Schema, p.spec.Target, p.spec.Filter)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", p.spec.Name, err)
	}

	split, err := Split(pm.X, pm.Y, p.testFraction, p.seed)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", p.spec.Name, err)
	}

	// The scaler is fitted once, on the training partition only, and the
	// same state transforms train, test, and every later inference input.
	scaler, err := scale.Fit(split.XTrain)
	if err != nil {
		return nil, fmt.Errorf("scale %s: %w", p.spec.Name, err)
	}
	xTrain := scaler.Transform(split.XTrain)
	xTest := scaler.Transform(split.XTest)

	est := forest.New(p.spec.Mode, p.spec.Forest)
	if err := est.Fit(xTrain, split.YTrain); err != nil {
		return nil, fmt.Errorf("fit %s: %w", p.spec.Name, err)
	}

	report := &Report{
		Task:         p.spec.Name,
		Mode:         p.spec.Mode,
		TrainSamples: len(split.XTrain),
		TestSamples:  len(split.XTest),
	}
	if p.spec.Mode == forest.Classification {
		report.Accuracy, report.Classes = evaluateClassifier(est, xTest, split.YTest, p.spec.ClassNames)
	} else {
		report.R2, report.RMSE = evaluateRegressor(est, xTest, split.YTest)
	}
	report.Importances, err = rankImportances(est, pm.Columns)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", p.spec.Name, err)
	}

	model := &artifact.Model{
		Version:   artifact.FormatVersion,
		Task:      p.spec.Name,
		Mode:      p.spec.Mode,
		Schema:    p.spec.Schema,
		Levels:    pm.Levels,
		Columns:   pm.Columns,
		Scaler:    scaler,
		Forest:    est,
		TrainedAt: time.Now().UTC(),
	}

	log.Info().
		Str("task", p.spec.Name).
		Int("train_samples", report.TrainSamples).
		Int("test_samples", report.TestSamples).
		Dur("elapsed", time.Since(start)).
		Msg("training finished")

	return &Result{Model: model, Report: report}, nil
}

// Package pipeline runs the training flow end to end: synthetic data
// generation, stratified split, ensemble training, evaluation on the held-out
// split, and persistence of the model artifact and its metrics report.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"fluxml/ml"
	"fluxml/store"
)

type Config struct {
	Samples   int     `yaml:"samples"`
	Trees     int     `yaml:"trees"`
	MaxDepth  int     `yaml:"max_depth"`
	TestRatio float64 `yaml:"test_ratio"`
	Seed      uint64  `yaml:"seed"`

	ModelContainer   string `yaml:"model_container"`
	ModelKey         string `yaml:"model_key"`
	MetricsContainer string `yaml:"metrics_container"`
	MetricsKey       string `yaml:"metrics_key"`
}

func DefaultConfig() Config {
	return Config{
		Samples:          1000,
		Trees:            100,
		MaxDepth:         10,
		TestRatio:        0.2,
		Seed:             42,
		ModelContainer:   "models",
		ModelKey:         "model_v1.json",
		MetricsContainer: "metrics",
		MetricsKey:       "metrics.json",
	}
}

type Result struct {
	ModelLocation   string
	MetricsLocation string
	Report          ml.Report
}

// Runner owns one training pipeline. The run store is optional; when present,
// every completed run is recorded in it.
type Runner struct {
	store store.Store
	runs  *RunStore
	cfg   Config
}

func NewRunner(st store.Store, runs *RunStore, cfg Config) *Runner {
	return &Runner{store: st, runs: runs, cfg: cfg}
}

// Run executes the pipeline. Any step failure aborts the remaining steps and
// is returned to the caller.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if r.store == nil {
		return nil, fmt.Errorf("pipeline store: %w", store.ErrConfig)
	}

	zap.L().Info("starting training pipeline",
		zap.Int("samples", r.cfg.Samples),
		zap.Int("trees", r.cfg.Trees),
		zap.Int("max_depth", r.cfg.MaxDepth),
		zap.Uint64("seed", r.cfg.Seed))

	ds, err := ml.GenerateDataset(r.cfg.Samples, r.cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("generate dataset: %w", err)
	}

	train, test := ml.StratifiedSplit(ds, r.cfg.TestRatio, r.cfg.Seed)
	zap.L().Info("dataset split", zap.Int("train", train.Len()), zap.Int("test", test.Len()))

	forest, err := ml.TrainForest(train.Features, train.Labels, ml.Config{
		Trees:    r.cfg.Trees,
		MaxDepth: r.cfg.MaxDepth,
		Seed:     r.cfg.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}

	report, err := ml.Evaluate(forest, test)
	if err != nil {
		return nil, fmt.Errorf("evaluate model: %w", err)
	}
	zap.L().Info("model evaluated", zap.Float64("accuracy", report.Accuracy))

	modelLocation, err := r.persistModel(ctx, forest)
	if err != nil {
		return nil, err
	}
	metricsLocation, err := r.persistMetrics(ctx, report)
	if err != nil {
		return nil, err
	}

	if r.runs != nil {
		if err := r.runs.Record(Run{
			TrainedAt:       forest.TrainedAt,
			Accuracy:        report.Accuracy,
			Samples:         r.cfg.Samples,
			ModelLocation:   modelLocation,
			MetricsLocation: metricsLocation,
			Report:          report,
		}); err != nil {
			zap.L().Warn("failed to record training run", zap.Error(err))
		}
	}

	zap.L().Info("pipeline completed",
		zap.String("model", modelLocation),
		zap.String("metrics", metricsLocation))

	return &Result{
		ModelLocation:   modelLocation,
		MetricsLocation: metricsLocation,
		Report:          report,
	}, nil
}

func (r *Runner) persistModel(ctx context.Context, forest *ml.Forest) (string, error) {
	payload, err := ml.EncodeModel(forest)
	if err != nil {
		return "", fmt.Errorf("serialize model: %w", err)
	}
	if err := r.store.EnsureContainer(ctx, r.cfg.ModelContainer); err != nil {
		return "", fmt.Errorf("ensure model container: %w", err)
	}
	if err := r.store.Put(ctx, r.cfg.ModelContainer, r.cfg.ModelKey, payload); err != nil {
		return "", fmt.Errorf("persist model: %w", err)
	}
	return r.cfg.ModelContainer + "/" + r.cfg.ModelKey, nil
}

func (r *Runner) persistMetrics(ctx context.Context, report ml.Report) (string, error) {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize metrics: %w", err)
	}
	if err := r.store.EnsureContainer(ctx, r.cfg.MetricsContainer); err != nil {
		return "", fmt.Errorf("ensure metrics container: %w", err)
	}
	if err := r.store.Put(ctx, r.cfg.MetricsContainer, r.cfg.MetricsKey, payload); err != nil {
		return "", fmt.Errorf("persist metrics: %w", err)
	}
	return r.cfg.MetricsContainer + "/" + r.cfg.MetricsKey, nil
}

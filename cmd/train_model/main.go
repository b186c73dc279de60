package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"fluxml/logging"
	"fluxml/pipeline"
	"fluxml/store"
)

func main() {
	samples := flag.Int("samples", 1000, "number of synthetic samples")
	trees := flag.Int("trees", 100, "ensemble size")
	maxDepth := flag.Int("max_depth", 10, "max tree depth")
	seed := flag.Uint64("seed", 42, "random seed")
	testRatio := flag.Float64("test_ratio", 0.2, "test ratio")
	backend := flag.String("backend", "local", "storage backend: local or s3")
	root := flag.String("root", "./data", "local store root")
	modelKey := flag.String("model_key", "model_v1.json", "model blob key")
	runsPath := flag.String("runs_db", "", "sqlite file for run history (optional)")
	logLevel := flag.String("log_level", "info", "log level")
	flag.Parse()

	logger, err := logging.Init(logging.Config{Level: *logLevel})
	if err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	blobStore, err := buildStore(ctx, *backend, *root)
	if err != nil {
		zap.L().Fatal("failed to build blob store", zap.Error(err))
	}

	var runs *pipeline.RunStore
	if *runsPath != "" {
		runs, err = pipeline.OpenRunStore(*runsPath)
		if err != nil {
			zap.L().Fatal("failed to open run store", zap.Error(err))
		}
		defer runs.Close()
	}

	cfg := pipeline.DefaultConfig()
	cfg.Samples = *samples
	cfg.Trees = *trees
	cfg.MaxDepth = *maxDepth
	cfg.Seed = *seed
	cfg.TestRatio = *testRatio
	cfg.ModelKey = *modelKey

	result, err := pipeline.NewRunner(blobStore, runs, cfg).Run(ctx)
	if err != nil {
		zap.L().Fatal("pipeline failed", zap.Error(err))
	}

	zap.L().Info("training finished",
		zap.String("model", result.ModelLocation),
		zap.String("metrics", result.MetricsLocation),
		zap.Float64("accuracy", result.Report.Accuracy))
}

func buildStore(ctx context.Context, backend, root string) (store.Store, error) {
	switch backend {
	case "local":
		return store.NewLocalStore(root)
	case "s3":
		return store.NewS3Store(ctx, store.S3ConfigFromEnv())
	default:
		return nil, store.ErrConfig
	}
}

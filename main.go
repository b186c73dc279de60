package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	fhttp "fluxml/http"
	"fluxml/logging"
	"fluxml/ml"
	"fluxml/store"
)

type Config struct {
	Http struct {
		Port int `yaml:"port"`
	} `yaml:"http"`
	Log     logging.Config `yaml:"log"`
	Storage struct {
		Backend        string `yaml:"backend"` // "local" or "s3"
		Root           string `yaml:"root"`    // local backend only
		ModelContainer string `yaml:"model_container"`
		ModelKey       string `yaml:"model_key"`
	} `yaml:"storage"`
	Model struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"model"`
}

func main() {
	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize logging
	logger, err := logging.Init(config.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logger.Sync()

	// 3. Build the blob store and model loader
	blobStore, localStore, err := buildStore(config)
	if err != nil {
		zap.L().Fatal("failed to build blob store", zap.Error(err))
	}

	loader, err := fhttp.NewLoader(blobStore, config.Storage.ModelContainer, config.Storage.ModelKey)
	if err != nil {
		zap.L().Fatal("failed to build model loader", zap.Error(err))
	}

	hub := fhttp.NewHub()
	go hub.Run()

	// 4. Watch the local artifact for changes
	var watcher *fhttp.Watcher
	if localStore != nil {
		path := localStore.Path(config.Storage.ModelContainer, config.Storage.ModelKey)
		watcher, err = fhttp.NewWatcher(path, loader)
		if err != nil {
			zap.L().Warn("artifact watcher disabled", zap.Error(err))
		} else {
			go watcher.Start()
		}
	}

	// 5. Start HTTP server
	handlers := fhttp.NewHandlers(loader, hub, fhttp.ModelInfo{
		ModelName:        config.Model.Name,
		ModelVersion:     config.Model.Version,
		Container:        config.Storage.ModelContainer,
		BlobName:         config.Storage.ModelKey,
		FeaturesRequired: ml.FeatureCount,
		Classes:          []int{0, 1},
	})

	serverConfig := fhttp.DefaultServerConfig()
	if config.Http.Port != 0 {
		serverConfig.Port = config.Http.Port
	}
	server := fhttp.NewServer(serverConfig, handlers)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 6. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("shutting down")

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			zap.L().Warn("failed to stop watcher", zap.Error(err))
		}
	}
	hub.Stop()
	if err := server.Stop(); err != nil {
		zap.L().Warn("server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	if config.Storage.ModelContainer == "" {
		config.Storage.ModelContainer = "models"
	}
	if config.Storage.ModelKey == "" {
		config.Storage.ModelKey = "model_v1.json"
	}
	return &config, nil
}

// buildStore returns the configured store; the second value is non-nil only
// for the local backend, where the artifact watcher applies.
func buildStore(config *Config) (store.Store, *store.LocalStore, error) {
	switch config.Storage.Backend {
	case "", "local":
		local, err := store.NewLocalStore(config.Storage.Root)
		if err != nil {
			return nil, nil, err
		}
		return local, local, nil
	case "s3":
		s3Store, err := store.NewS3Store(context.Background(), store.S3ConfigFromEnv())
		if err != nil {
			return nil, nil, err
		}
		return s3Store, nil, nil
	default:
		return nil, nil, store.ErrConfig
	}
}

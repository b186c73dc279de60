// Package logging builds the process-wide zap logger.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Init constructs the logger and installs it as the zap global. Console output
// is always on; when a file is configured, JSON logs are also written there
// with lumberjack rotation.
func Init(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return nil, err
		}
	}

	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), level),
	}

	if cfg.File != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 50
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSize,
			MaxBackups: cfg.MaxBackups,
		}
		jsonEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(jsonEncoder, zapcore.AddSync(rotator), level))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	zap.ReplaceGlobals(logger)
	return logger, nil
}

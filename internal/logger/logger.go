// Package logger builds the process logger from LogConfig.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go-fcmap/internal/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// InitLogger creates a logrus logger with the configured level, format
// and output. An unknown level falls back to info.
func InitLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
		log.Warnf("Invalid log level '%s', using 'info' as default", cfg.Level)
	}
	log.SetLevel(level)

	if err := setLogFormatter(log, cfg); err != nil {
		return nil, fmt.Errorf("failed to set log formatter: %w", err)
	}
	if err := setLogOutput(log, cfg); err != nil {
		return nil, fmt.Errorf("failed to set log output: %w", err)
	}
	log.SetReportCaller(cfg.Caller)
	return log, nil
}

func setLogFormatter(log *logrus.Logger, cfg config.LogConfig) error {
	switch strings.ToLower(cfg.Format) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: timestampFormat,
			FullTimestamp:   true,
		})
	default:
		return fmt.Errorf("unsupported log format: %s", cfg.Format)
	}
	return nil
}

func setLogOutput(log *logrus.Logger, cfg config.LogConfig) error {
	switch strings.ToLower(cfg.Output) {
	case "stdout", "":
		log.SetOutput(os.Stdout)
	case "stderr":
		log.SetOutput(os.Stderr)
	case "file":
		if cfg.File == "" {
			return fmt.Errorf("file path is required when output is file")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize, // MB
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge, // days
			Compress:   cfg.Compress,
		}
		if log.GetLevel() >= logrus.DebugLevel {
			log.SetOutput(io.MultiWriter(os.Stdout, rotated))
		} else {
			log.SetOutput(rotated)
		}
	default:
		return fmt.Errorf("unsupported log output: %s", cfg.Output)
	}
	return nil
}

// Package config loads motoscan configuration from files, environment
// variables and flags, and converts it into pipeline settings.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/motoforense/motoscan/internal/pipeline"
	"github.com/motoforense/motoscan/internal/recognize"
)

// DefaultConfig returns the configuration used when no file, environment
// variable or flag overrides a value.
func DefaultConfig() Config {
	rec := recognize.DefaultLocalConfig()
	vis := recognize.DefaultVisionConfig()
	return Config{
		LogLevel: "info",
		Recognizer: RecognizerConfig{
			ModelPath:           rec.ModelPath,
			ImageHeight:         rec.ImageHeight,
			MaxWidth:            rec.MaxWidth,
			NumThreads:          rec.NumThreads,
			ConfidenceThreshold: recognize.DefaultConfidenceThreshold,
		},
		Vision: VisionConfig{
			Model:      vis.Model,
			TimeoutSec: int(vis.Timeout / time.Second),
		},
		Forensics: ForensicsConfig{
			AlignmentTolerance: 0.15,
			MinCharPixels:      120,
		},
		Server: ServerConfig{
			Host:            "",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     20,
			TimeoutSec:      60,
			ShutdownTimeout: 10,
		},
	}
}

// Validate checks configuration coherence. It does not touch the
// filesystem; missing files surface when the pipeline builds.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	if c.Recognizer.ConfidenceThreshold < 0 || c.Recognizer.ConfidenceThreshold > 1 {
		return errors.New("recognizer confidence threshold must be within [0, 1]")
	}
	if c.Recognizer.ImageHeight < 0 {
		return errors.New("recognizer image height must be >= 0")
	}
	if c.Vision.Endpoint != "" && c.Vision.TimeoutSec <= 0 {
		return errors.New("vision timeout must be positive when the endpoint is set")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.New("server max upload size must be positive")
	}
	if c.Scoring.Weights != nil {
		if err := c.Scoring.Weights.Validate(); err != nil {
			return fmt.Errorf("scoring weights: %w", err)
		}
	}
	if len(c.Scoring.Thresholds) > 0 {
		if err := c.Scoring.Thresholds.Validate(); err != nil {
			return fmt.Errorf("scoring thresholds: %w", err)
		}
	}
	return nil
}

// ToPipelineConfig converts the application configuration into pipeline
// component settings.
func (c *Config) ToPipelineConfig() pipeline.Config {
	pc := pipeline.DefaultConfig()
	pc.RegistryPath = c.RegistryPath
	pc.TemplateDir = c.TemplateDir
	pc.StorePath = c.StorePath

	if c.Recognizer.ModelPath != "" {
		pc.Recognizer.ModelPath = c.Recognizer.ModelPath
	}
	if c.Recognizer.ImageHeight > 0 {
		pc.Recognizer.ImageHeight = c.Recognizer.ImageHeight
	}
	if c.Recognizer.MaxWidth > 0 {
		pc.Recognizer.MaxWidth = c.Recognizer.MaxWidth
	}
	if c.Recognizer.NumThreads > 0 {
		pc.Recognizer.NumThreads = c.Recognizer.NumThreads
	}
	if c.Recognizer.ConfidenceThreshold > 0 {
		pc.Orchestrator.ConfidenceThreshold = c.Recognizer.ConfidenceThreshold
	}

	if c.Vision.Endpoint != "" {
		pc.EnableVision = true
		pc.Vision.Endpoint = c.Vision.Endpoint
		pc.Vision.APIKey = c.Vision.APIKey
		if c.Vision.Model != "" {
			pc.Vision.Model = c.Vision.Model
		}
		if c.Vision.TimeoutSec > 0 {
			pc.Vision.Timeout = time.Duration(c.Vision.TimeoutSec) * time.Second
		}
	}

	if c.Forensics.AlignmentTolerance > 0 {
		pc.Forensics.AlignmentTolerance = c.Forensics.AlignmentTolerance
	}
	if c.Forensics.MinCharPixels > 0 {
		pc.Forensics.MinCharPixels = c.Forensics.MinCharPixels
	}

	if c.Scoring.Weights != nil {
		pc.Weights = *c.Scoring.Weights
	}
	if len(c.Scoring.Thresholds) > 0 {
		pc.Thresholds = c.Scoring.Thresholds
	}
	return pc
}

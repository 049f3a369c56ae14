package config

import (
	"github.com/motoforense/motoscan/internal/risk"
)

// Config represents the complete configuration for the motoscan
// application. It supports loading from configuration files, environment
// variables and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// RegistryPath optionally merges extra engine-code prefixes over the
	// builtin table.
	RegistryPath string `mapstructure:"registry_path" yaml:"registry_path" json:"registry_path"`
	// TemplateDir is the root of reference glyph template sets.
	TemplateDir string `mapstructure:"template_dir" yaml:"template_dir" json:"template_dir"`
	// StorePath is the SQLite database of confirmed frauds.
	StorePath string `mapstructure:"store_path" yaml:"store_path" json:"store_path"`

	Recognizer RecognizerConfig `mapstructure:"recognizer" yaml:"recognizer" json:"recognizer"`
	Vision     VisionConfig     `mapstructure:"vision" yaml:"vision" json:"vision"`
	Forensics  ForensicsConfig  `mapstructure:"forensics" yaml:"forensics" json:"forensics"`
	Scoring    ScoringConfig    `mapstructure:"scoring" yaml:"scoring" json:"scoring"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server" json:"server"`
}

// RecognizerConfig contains local ONNX recognizer settings.
type RecognizerConfig struct {
	ModelPath           string  `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	ImageHeight         int     `mapstructure:"image_height" yaml:"image_height" json:"image_height"`
	MaxWidth            int     `mapstructure:"max_width" yaml:"max_width" json:"max_width"`
	NumThreads          int     `mapstructure:"num_threads" yaml:"num_threads" json:"num_threads"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold" json:"confidence_threshold"`
}

// VisionConfig contains the remote vision recognizer settings. The
// secondary is enabled by setting an endpoint.
type VisionConfig struct {
	Endpoint   string `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`
	APIKey     string `mapstructure:"api_key" yaml:"api_key" json:"-"`
	Model      string `mapstructure:"model" yaml:"model" json:"model"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
}

// ForensicsConfig contains physical-analysis settings.
type ForensicsConfig struct {
	AlignmentTolerance float64 `mapstructure:"alignment_tolerance" yaml:"alignment_tolerance" json:"alignment_tolerance"`
	MinCharPixels      int     `mapstructure:"min_char_pixels" yaml:"min_char_pixels" json:"min_char_pixels"`
}

// ScoringConfig carries the penalty table and verdict tiers. Empty
// sections fall back to the builtin policy.
type ScoringConfig struct {
	Weights    *risk.Weights   `mapstructure:"weights" yaml:"weights,omitempty" json:"weights,omitempty"`
	Thresholds risk.Thresholds `mapstructure:"thresholds" yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

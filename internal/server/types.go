// Package server exposes the analysis pipeline over HTTP: one multipart
// analyze endpoint plus health, prefix listing and Prometheus metrics.
package server

import (
	"context"
	"image"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/motoforense/motoscan/internal/pipeline"
	"github.com/motoforense/motoscan/internal/registry"
)

// analyzer is the pipeline surface the server needs.
type analyzer interface {
	Analyze(ctx context.Context, img image.Image, meta pipeline.Meta) (*pipeline.Result, error)
	Registry() *registry.Registry
	Close() error
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline    analyzer
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
	version     string
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	TimeoutSec     int
	Version        string
	PipelineConfig pipeline.Config
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// PrefixInfo describes one registered engine-code prefix.
type PrefixInfo struct {
	Prefix         string `json:"prefix"`
	Model          string `json:"model"`
	Displacement   int    `json:"displacement,omitempty"`
	ExpectedLength int    `json:"expected_length"`
	Era            string `json:"era,omitempty"`
}

// PrefixesResponse lists the known prefixes.
type PrefixesResponse struct {
	Prefixes []PrefixInfo `json:"prefixes"`
	Count    int          `json:"count"`
}

// AnalyzeResponse wraps one analysis result.
type AnalyzeResponse struct {
	Success bool             `json:"success"`
	Result  *pipeline.Result `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// NewServer builds the pipeline from the provided config and wraps it in
// an HTTP server.
func NewServer(config Config) (*Server, error) {
	pl, err := pipeline.NewBuilder().WithConfig(config.PipelineConfig).Build()
	if err != nil {
		return nil, err
	}
	return newServerWith(pl, config), nil
}

// newServerWith wires a ready pipeline, used by tests with fakes.
func newServerWith(pl analyzer, config Config) *Server {
	return &Server{
		pipeline:    pl,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
		version:     config.Version,
	}
}

// Close releases server resources.
func (s *Server) Close() error {
	if s.pipeline != nil {
		return s.pipeline.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/prefixes", s.corsMiddleware(s.prefixesHandler))
	mux.HandleFunc("/analyze", s.corsMiddleware(s.analyzeHandler))
	mux.Handle("/metrics", promhttp.Handler())
}

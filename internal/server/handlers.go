package server

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	_ "golang.org/x/image/bmp"

	"github.com/motoforense/motoscan/internal/pipeline"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: s.version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	s.writeJSON(w, http.StatusOK, response)
}

// prefixesHandler lists the registered engine-code prefixes.
func (s *Server) prefixesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records := s.pipeline.Registry().Records()
	prefixes := make([]PrefixInfo, len(records))
	for i, rec := range records {
		prefixes[i] = PrefixInfo{
			Prefix:         rec.Prefix,
			Model:          rec.Model,
			Displacement:   rec.Displacement,
			ExpectedLength: rec.ExpectedLength,
			Era:            string(rec.Era),
		}
	}

	s.writeJSON(w, http.StatusOK, PrefixesResponse{Prefixes: prefixes, Count: len(prefixes)})
}

// analyzeHandler runs the full decision chain on one uploaded photograph.
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)
	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()
	uploadSizeBytes.Observe(float64(header.Size))

	img, _, err := image.Decode(file)
	if err != nil {
		s.writeErrorResponse(w, "Unsupported or corrupt image", http.StatusBadRequest)
		return
	}

	year, err := strconv.Atoi(r.FormValue("year"))
	if err != nil {
		s.writeErrorResponse(w, "Missing or invalid year field", http.StatusBadRequest)
		return
	}
	force, _ := strconv.ParseBool(r.FormValue("force_secondary"))
	meta := pipeline.Meta{
		Year:           year,
		Model:          r.FormValue("model"),
		ForceSecondary: force,
	}

	ctx := r.Context()
	if s.timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.timeoutSec)*time.Second)
		defer cancel()
	}

	start := time.Now()
	result, err := s.pipeline.Analyze(ctx, img, meta)
	analysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		analysisTotal.WithLabelValues("error").Inc()
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrInvalidYear) || errors.Is(err, pipeline.ErrNilImage) {
			status = http.StatusBadRequest
		}
		slog.Error("analysis failed", "error", err)
		s.writeErrorResponse(w, err.Error(), status)
		return
	}

	analysisTotal.WithLabelValues("ok").Inc()
	verdictsTotal.WithLabelValues(string(result.Assessment.Verdict)).Inc()
	if result.Recognition != nil && result.Recognition.SecondaryInvoked {
		outcome := "ok"
		if result.Recognition.Degraded {
			outcome = "degraded"
		}
		secondaryInvocations.WithLabelValues(outcome).Inc()
	}

	s.writeJSON(w, http.StatusOK, AnalyzeResponse{Success: true, Result: result})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, msg string, status int) {
	s.writeJSON(w, status, AnalyzeResponse{Success: false, Error: msg})
}

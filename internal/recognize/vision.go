package recognize

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// VisionConfig configures the cloud vision recognizer. Every call is
// billable, so the orchestrator gates its use.
type VisionConfig struct {
	Endpoint string        // vision API endpoint
	APIKey   string        // bearer key; empty disables the backend
	Model    string        // model identifier sent with each request
	Timeout  time.Duration // per-request deadline
}

// DefaultVisionConfig returns the default cloud recognizer configuration.
func DefaultVisionConfig() VisionConfig {
	return VisionConfig{
		Endpoint: "https://api.visionocr.example/v1/read",
		Model:    "engrave-read-1",
		Timeout:  30 * time.Second,
	}
}

// Vision is the secondary recognizer: a remote vision model read over
// HTTP. Higher precision, network bound, cancelable.
type Vision struct {
	cfg    VisionConfig
	client *http.Client
}

// NewVision creates the cloud recognizer. It does not dial anything until
// the first Recognize call.
func NewVision(cfg VisionConfig) (*Vision, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("vision endpoint cannot be empty")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("vision API key cannot be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Vision{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

// Source implements Recognizer.
func (v *Vision) Source() Source { return SourceSecondary }

type visionRequest struct {
	Model string `json:"model"`
	Image string `json:"image"` // base64 PNG
	Hint  string `json:"hint,omitempty"`
}

type visionResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Recognize sends the image to the vision API and returns the cleaned
// reading. The context deadline cancels the in-flight HTTP request.
func (v *Vision) Recognize(ctx context.Context, img image.Image) (RawRecognition, error) {
	if img == nil {
		return RawRecognition{}, errors.New("input image is nil")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return RawRecognition{}, fmt.Errorf("encode image: %w", err)
	}

	payload, err := json.Marshal(visionRequest{
		Model: v.cfg.Model,
		Image: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Hint:  "engraved vehicle engine identification code, uppercase letters and digits",
	})
	if err != nil {
		return RawRecognition{}, fmt.Errorf("marshal vision request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return RawRecognition{}, fmt.Errorf("build vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.cfg.APIKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return RawRecognition{}, fmt.Errorf("vision request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return RawRecognition{}, fmt.Errorf("vision API status %d", resp.StatusCode)
	}
	var vr visionResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return RawRecognition{}, fmt.Errorf("decode vision response: %w", err)
	}

	text := CleanText(vr.Text)
	conf := vr.Confidence
	if conf <= 0 || conf > 1 {
		// The API occasionally omits confidence; a verified remote read
		// is still the higher-precision source.
		conf = 0.9
	}

	slog.Debug("vision recognition", "text", text, "confidence", conf)
	return RawRecognition{Text: text, Confidence: conf, Source: SourceSecondary}, nil
}

// CleanText strips diacritics and everything outside the engraving
// alphabet from a model reading. Vision models pad answers with prose and
// typographic characters; only A-Z, 0-9 and the separator survive.
func CleanText(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	flat, _, err := transform.String(t, s)
	if err != nil {
		flat = s
	}
	flat = strings.ToUpper(flat)
	var b strings.Builder
	b.Grow(len(flat))
	for _, r := range flat {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

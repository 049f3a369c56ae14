// Package recognize provides the pluggable text recognizers and the
// dual-recognizer orchestration that decides the best normalized code for
// an analysis request.
package recognize

import (
	"context"
	"image"
)

// Source identifies which recognizer produced a reading.
type Source string

const (
	// SourcePrimary is the offline, fast, lower-precision recognizer.
	SourcePrimary Source = "PRIMARY"
	// SourceSecondary is the network-bound, billable, higher-precision
	// recognizer.
	SourceSecondary Source = "SECONDARY"
)

// RawRecognition is one recognizer reading. Immutable, never persisted.
type RawRecognition struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source"`
}

// Recognizer is the capability contract both OCR backends implement.
// Implementations must honor context cancellation on blocking work.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (RawRecognition, error)
	Source() Source
}

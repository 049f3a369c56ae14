package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/motoforense/motoscan/internal/forensics"
	"github.com/motoforense/motoscan/internal/normalize"
	"github.com/motoforense/motoscan/internal/recognize"
	"github.com/motoforense/motoscan/internal/risk"
	"github.com/motoforense/motoscan/internal/visual"
)

// Plausible model-year window. Honda never engraved codes before the
// early seventies, and dealers register at most one year ahead.
const (
	MinYear      = 1970
	MaxYearAhead = 1
)

var (
	ErrNilImage    = errors.New("image is nil")
	ErrInvalidYear = errors.New("declared year out of plausible range")
)

// Meta carries the caller-declared context for one analysis.
type Meta struct {
	// Year is the declared model year, used to derive the expected
	// engraving technique.
	Year int
	// Model is the declared motorcycle model, informational only.
	Model string
	// ForceSecondary runs the secondary recognizer regardless of
	// primary confidence.
	ForceSecondary bool
}

// Result is the complete outcome of one analysis.
type Result struct {
	Code       normalize.Code       `json:"code"`
	Validation normalize.Validation `json:"validation"`

	Recognition *recognize.Resolution `json:"recognition"`
	Findings    *forensics.Findings   `json:"forensics"`
	Visual      *visual.MatchResult   `json:"visual,omitempty"`
	Fraud       *risk.FraudMatch      `json:"fraud,omitempty"`

	Assessment risk.Assessment `json:"assessment"`

	// ExpectedModel is the model registered for the resolved prefix.
	ExpectedModel string        `json:"expected_model,omitempty"`
	DeclaredYear  int           `json:"declared_year"`
	Elapsed       time.Duration `json:"elapsed_ns"`
}

// Analyze runs the full decision chain on one engraving photograph.
// Deterministic for identical inputs.
func (p *Pipeline) Analyze(ctx context.Context, img image.Image, meta Meta) (*Result, error) {
	start := time.Now()
	if img == nil {
		return nil, ErrNilImage
	}
	maxYear := time.Now().Year() + MaxYearAhead
	if meta.Year < MinYear || meta.Year > maxYear {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidYear, meta.Year, MinYear, maxYear)
	}

	resolution, err := p.orchestrator.Resolve(ctx, img, meta.ForceSecondary)
	if err != nil {
		return nil, fmt.Errorf("recognize engraving: %w", err)
	}
	code := resolution.Code
	validation := normalize.Validate(code)

	var (
		findings *forensics.Findings
		match    *visual.MatchResult
		fraud    *risk.FraudMatch
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, ferr := p.analyzer.Analyze(img, code, meta.Year)
		if ferr != nil {
			return fmt.Errorf("forensic analysis: %w", ferr)
		}
		findings = f
		return nil
	})
	if p.comparator != nil {
		g.Go(func() error {
			m, merr := p.comparator.Compare(img, code)
			if merr != nil {
				return fmt.Errorf("visual comparison: %w", merr)
			}
			match = m
			return nil
		})
	}
	if p.db != nil {
		g.Go(func() error {
			rec, exact, serr := p.db.LookupFraud(gctx, code.Corrected)
			if serr != nil {
				return fmt.Errorf("fraud lookup: %w", serr)
			}
			if rec != nil {
				fraud = &risk.FraudMatch{
					Code:        rec.Code,
					FraudType:   rec.FraudType,
					Description: rec.Description,
					Exact:       exact,
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	assessment := risk.Aggregate(risk.Inputs{
		Validation:   validation,
		Code:         code,
		Findings:     findings,
		Visual:       match,
		Fraud:        fraud,
		Degraded:     resolution.Degraded,
		Disagreement: resolution.Disagreement,
		Notes:        resolution.Notes,
	}, p.cfg.Weights, p.cfg.Thresholds)

	result := &Result{
		Code:         code,
		Validation:   validation,
		Recognition:  resolution,
		Findings:     findings,
		Visual:       match,
		Fraud:        fraud,
		Assessment:   assessment,
		DeclaredYear: meta.Year,
		Elapsed:      time.Since(start),
	}
	if rec := code.Record(); rec != nil {
		result.ExpectedModel = rec.Model
	}

	p.logger.Info("analysis complete",
		"code", code.Corrected,
		"prefix", code.Prefix,
		"score", assessment.Score,
		"verdict", assessment.Verdict,
		"secondary", resolution.SecondaryInvoked,
		"degraded", resolution.Degraded,
		"elapsed", result.Elapsed)
	return result, nil
}

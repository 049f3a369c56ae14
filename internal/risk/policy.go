// Package risk fuses format, forensic and visual signals into a bounded
// score and a discrete verdict with ranked explanations.
package risk

import (
	"errors"
	"fmt"
)

// Verdict is the discrete risk category derived from the numeric score.
type Verdict string

const (
	VerdictRegular       Verdict = "REGULAR"
	VerdictVerify        Verdict = "VERIFICAR"
	VerdictSuspect       Verdict = "SUSPEITO"
	VerdictHighSuspicion Verdict = "ALTA_SUSPEITA"
)

// Signal names used in contribution breakdowns and configuration.
const (
	SignalKnownFraud      = "known_fraud"
	SignalInvalidFormat   = "invalid_format"
	SignalTypeMismatch    = "engraving_mismatch"
	SignalMixedTypes      = "mixed_types"
	SignalGapAnomalies    = "gap_anomalies"
	SignalVisualMismatch  = "visual_dissimilarity"
	SignalMisalignment    = "alignment_deviation"
	SignalRecognizerSplit = "recognizer_disagreement"
)

// Weights is the penalty table. Severity ordering is a configuration
// invariant: known fraud > mixed types > engraving mismatch and invalid
// format > a single gap anomaly > visual dissimilarity > alignment.
type Weights struct {
	KnownFraud         int     `mapstructure:"known_fraud" yaml:"known_fraud"`
	MixedTypes         int     `mapstructure:"mixed_types" yaml:"mixed_types"`
	EngravingMismatch  int     `mapstructure:"engraving_mismatch" yaml:"engraving_mismatch"`
	InvalidFormat      int     `mapstructure:"invalid_format" yaml:"invalid_format"`
	GapAnomaly         int     `mapstructure:"gap_anomaly" yaml:"gap_anomaly"`
	GapAnomalyCap      int     `mapstructure:"gap_anomaly_cap" yaml:"gap_anomaly_cap"`
	VisualMax          int     `mapstructure:"visual_max" yaml:"visual_max"`
	VisualThreshold    float64 `mapstructure:"visual_threshold" yaml:"visual_threshold"`
	Misalignment       int     `mapstructure:"misalignment" yaml:"misalignment"`
	AlignmentThreshold float64 `mapstructure:"alignment_threshold" yaml:"alignment_threshold"`
	Disagreement       int     `mapstructure:"disagreement" yaml:"disagreement"`
}

// DefaultWeights returns the production penalty table.
func DefaultWeights() Weights {
	return Weights{
		KnownFraud:         100,
		MixedTypes:         45,
		EngravingMismatch:  30,
		InvalidFormat:      25,
		GapAnomaly:         10,
		GapAnomalyCap:      30,
		VisualMax:          8,
		VisualThreshold:    0.60,
		Misalignment:       5,
		AlignmentThreshold: 0.15,
		Disagreement:       5,
	}
}

// Validate enforces the relative severity ordering the scoring policy
// promises.
func (w Weights) Validate() error {
	switch {
	case w.KnownFraud <= w.MixedTypes:
		return errors.New("known fraud weight must exceed mixed types")
	case w.MixedTypes <= w.EngravingMismatch || w.MixedTypes <= w.InvalidFormat:
		return errors.New("mixed types weight must exceed format and engraving penalties")
	case w.EngravingMismatch <= w.GapAnomaly || w.InvalidFormat <= w.GapAnomaly:
		return errors.New("format and engraving penalties must exceed a single gap anomaly")
	case w.GapAnomaly <= w.VisualMax:
		return errors.New("gap anomaly weight must exceed the visual penalty")
	case w.VisualMax <= w.Misalignment:
		return errors.New("visual penalty must exceed the alignment penalty")
	case w.GapAnomalyCap < w.GapAnomaly:
		return errors.New("gap anomaly cap below a single anomaly")
	}
	return nil
}

// Tier maps an inclusive score range to a verdict.
type Tier struct {
	Verdict Verdict `mapstructure:"verdict" yaml:"verdict"`
	Low     int     `mapstructure:"low" yaml:"low"`
	High    int     `mapstructure:"high" yaml:"high"`
}

// Thresholds is the ordered verdict tier table.
type Thresholds []Tier

// DefaultThresholds returns the production verdict boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		{Verdict: VerdictRegular, Low: 0, High: 10},
		{Verdict: VerdictVerify, Low: 11, High: 30},
		{Verdict: VerdictSuspect, Low: 31, High: 60},
		{Verdict: VerdictHighSuspicion, Low: 61, High: 100},
	}
}

// Validate checks the tier table is monotonic, non-overlapping and covers
// every integer in [0,100]. A failing table is a configuration bug, not a
// runtime condition.
func (t Thresholds) Validate() error {
	if len(t) == 0 {
		return errors.New("empty verdict threshold table")
	}
	if t[0].Low != 0 {
		return fmt.Errorf("first tier must start at 0, got %d", t[0].Low)
	}
	for i, tier := range t {
		if tier.High < tier.Low {
			return fmt.Errorf("tier %s has inverted range [%d,%d]", tier.Verdict, tier.Low, tier.High)
		}
		if i > 0 && tier.Low != t[i-1].High+1 {
			return fmt.Errorf("tier %s does not continue from previous tier (low %d, previous high %d)",
				tier.Verdict, tier.Low, t[i-1].High)
		}
	}
	if t[len(t)-1].High != MaxScore {
		return fmt.Errorf("last tier must end at %d, got %d", MaxScore, t[len(t)-1].High)
	}
	return nil
}

// VerdictFor maps a clamped score to its tier. The table must have been
// validated; an unmapped score is a programming-contract failure.
func (t Thresholds) VerdictFor(score int) Verdict {
	for _, tier := range t {
		if score >= tier.Low && score <= tier.High {
			return tier.Verdict
		}
	}
	panic(fmt.Sprintf("risk: score %d not covered by verdict thresholds", score))
}

// Max returns the verdict of the highest tier.
func (t Thresholds) Max() Verdict {
	return t[len(t)-1].Verdict
}

package risk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/motoforense/motoscan/internal/forensics"
	"github.com/motoforense/motoscan/internal/normalize"
	"github.com/motoforense/motoscan/internal/visual"
)

// Score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// FraudMatch is a hit against the confirmed-fraud store.
type FraudMatch struct {
	Code        string `json:"code"`
	FraudType   string `json:"fraud_type,omitempty"`
	Description string `json:"description,omitempty"`
	Exact       bool   `json:"exact"`
}

// Inputs carries every signal the aggregator fuses. All fields are
// read-only; Visual and Fraud may be nil.
type Inputs struct {
	Validation   normalize.Validation
	Code         normalize.Code
	Findings     *forensics.Findings
	Visual       *visual.MatchResult
	Fraud        *FraudMatch
	Degraded     bool
	Disagreement bool
	Notes        []string
}

// Assessment is the terminal output of one analysis. Never mutated after
// creation.
type Assessment struct {
	Score   int     `json:"score"`
	Verdict Verdict `json:"verdict"`
	// Explanation lists triggered findings ordered from highest to
	// lowest contribution, followed by informational notes.
	Explanation []string `json:"explanation"`
	// Contributions maps signal name to its weighted contribution.
	Contributions map[string]int `json:"contributing_signals"`
}

type signal struct {
	name         string
	contribution int
	text         string
}

// Aggregate fuses all signals into a clamped score and verdict. It is a
// pure, deterministic function of its inputs: identical inputs produce
// identical output, explanation order included.
func Aggregate(in Inputs, w Weights, tiers Thresholds) Assessment {
	if in.Fraud != nil {
		// Short-circuit: a confirmed fraud match overrides everything.
		return Assessment{
			Score:   clamp(w.KnownFraud),
			Verdict: tiers.VerdictFor(clamp(w.KnownFraud)),
			Explanation: append([]string{
				fmt.Sprintf("code matches confirmed fraud case %s", in.Fraud.Code),
			}, in.Notes...),
			Contributions: map[string]int{SignalKnownFraud: clamp(w.KnownFraud)},
		}
	}

	signals := collect(in, w)
	// Highest contribution first; ties break on name so ordering is
	// stable for identical inputs.
	sort.SliceStable(signals, func(i, j int) bool {
		if signals[i].contribution != signals[j].contribution {
			return signals[i].contribution > signals[j].contribution
		}
		return signals[i].name < signals[j].name
	})

	total := 0
	contributions := make(map[string]int, len(signals))
	explanation := make([]string, 0, len(signals)+len(in.Notes))
	for _, s := range signals {
		total += s.contribution
		contributions[s.name] = s.contribution
		explanation = append(explanation, s.text)
	}
	explanation = append(explanation, in.Notes...)

	score := clamp(total)
	return Assessment{
		Score:         score,
		Verdict:       tiers.VerdictFor(score),
		Explanation:   explanation,
		Contributions: contributions,
	}
}

func collect(in Inputs, w Weights) []signal {
	var signals []signal
	add := func(name string, contribution int, text string) {
		signals = append(signals, signal{name: name, contribution: contribution, text: text})
	}

	if !in.Validation.Valid {
		reason := "code format invalid"
		if len(in.Validation.Issues) > 0 {
			reason = fmt.Sprintf("code format invalid: %s", strings.Join(in.Validation.Issues, "; "))
		}
		add(SignalInvalidFormat, w.InvalidFormat, reason)
	}

	if f := in.Findings; f != nil {
		if f.HasMixedTypes {
			add(SignalMixedTypes, w.MixedTypes,
				"mixed engraving techniques within one code, implausible for a single factory pass")
		}
		if !f.TypeMatch() {
			add(SignalTypeMismatch, w.EngravingMismatch,
				fmt.Sprintf("%s engraving detected where %s is expected for the declared year",
					f.DetectedType, f.ExpectedType))
		}
		if n := f.GapAnomalies(); n > 0 {
			contribution := n * w.GapAnomaly
			if contribution > w.GapAnomalyCap {
				contribution = w.GapAnomalyCap
			}
			add(SignalGapAnomalies, contribution,
				fmt.Sprintf("%d high-risk character(s) with glyph structure inconsistent with the factory font", n))
		}
		if len(f.MisalignedChars) > 0 && f.AlignmentDeviation > w.AlignmentThreshold {
			add(SignalMisalignment, w.Misalignment,
				fmt.Sprintf("%d character(s) off the engraving baseline", len(f.MisalignedChars)))
		}
	}

	if v := in.Visual; v != nil && v.Overall < w.VisualThreshold {
		contribution := int(float64(w.VisualMax)*(1-v.Overall) + 0.5)
		if contribution > 0 {
			add(SignalVisualMismatch, contribution,
				fmt.Sprintf("glyphs diverge from reference set %s (similarity %.0f%%)",
					v.ReferenceID, v.Overall*100))
		}
	}

	if in.Disagreement {
		add(SignalRecognizerSplit, w.Disagreement,
			"primary and secondary recognizers resolved different prefixes")
	}

	return signals
}

func clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

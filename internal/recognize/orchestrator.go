package recognize

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/motoforense/motoscan/internal/normalize"
	"github.com/motoforense/motoscan/internal/registry"
)

// DefaultConfidenceThreshold gates the secondary recognizer: strictly
// below it the primary reading is not trusted on its own.
const DefaultConfidenceThreshold = 0.70

// OrchestratorConfig tunes the dual-recognizer protocol.
type OrchestratorConfig struct {
	ConfidenceThreshold float64       // primary confidence below this invokes the secondary
	SecondaryTimeout    time.Duration // bound on the secondary network call
}

// DefaultOrchestratorConfig returns the default orchestration settings.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		SecondaryTimeout:    30 * time.Second,
	}
}

// Resolution is the orchestrator's decision: the best normalized code plus
// the raw readings that produced it. No other component second-guesses it.
type Resolution struct {
	Code    normalize.Code  `json:"code"`
	Primary RawRecognition  `json:"primary"`
	// Secondary is nil when the secondary recognizer did not run or failed.
	Secondary *RawRecognition `json:"secondary,omitempty"`
	// SecondaryInvoked reports that the protocol decided to call the
	// secondary, whether or not the call succeeded.
	SecondaryInvoked bool `json:"secondary_invoked"`
	// Degraded is set when the secondary was wanted but unavailable;
	// analysis proceeds on the primary's best effort.
	Degraded bool `json:"degraded"`
	// Disagreement is set when both recognizers resolved different
	// prefixes; it is surfaced to the aggregator as a forensic signal.
	Disagreement bool `json:"disagreement"`
	// Notes carries human-readable degradation and reconciliation notes.
	Notes []string `json:"notes,omitempty"`
}

// Orchestrator decides when the costlier secondary recognizer runs and
// reconciles disagreeing readings into one normalized code.
type Orchestrator struct {
	primary   Recognizer
	secondary Recognizer // may be nil when not configured
	reg       *registry.Registry
	cfg       OrchestratorConfig
}

// NewOrchestrator wires the recognizers. secondary may be nil; the
// protocol then always proceeds on the primary alone.
func NewOrchestrator(primary Recognizer, secondary Recognizer, reg *registry.Registry, cfg OrchestratorConfig) *Orchestrator {
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if cfg.SecondaryTimeout <= 0 {
		cfg.SecondaryTimeout = 30 * time.Second
	}
	return &Orchestrator{primary: primary, secondary: secondary, reg: reg, cfg: cfg}
}

// Resolve runs the dual-recognizer protocol over one image.
func (o *Orchestrator) Resolve(ctx context.Context, img image.Image, forceSecondary bool) (*Resolution, error) {
	res := &Resolution{}

	raw, err := o.primary.Recognize(ctx, img)
	if err != nil {
		if o.secondary == nil {
			return nil, fmt.Errorf("primary recognizer: %w", err)
		}
		// A dead primary is recoverable as long as the secondary reads.
		slog.Warn("primary recognizer failed, falling back to secondary", "error", err)
		res.Notes = append(res.Notes, "primary recognizer unavailable")
		forceSecondary = true
		raw = RawRecognition{Source: SourcePrimary}
	}
	res.Primary = raw
	res.Code = normalize.Normalize(raw.Text, o.reg)

	if !o.needSecondary(raw, res.Code, forceSecondary) {
		return res, nil
	}
	res.SecondaryInvoked = true
	if o.secondary == nil {
		res.Degraded = true
		res.Notes = append(res.Notes, "secondary recognizer not configured")
		return res, nil
	}

	sctx, cancel := context.WithTimeout(ctx, o.cfg.SecondaryTimeout)
	defer cancel()
	sraw, err := o.secondary.Recognize(sctx, img)
	if err != nil {
		// Secondary failure degrades precision, never availability.
		slog.Warn("secondary recognizer unavailable", "error", err)
		res.Degraded = true
		res.Notes = append(res.Notes, "secondary recognizer unavailable, analysis degraded to primary reading")
		return res, nil
	}
	res.Secondary = &sraw

	o.reconcile(res, sraw)
	return res, nil
}

// needSecondary applies the invocation policy: force flag, low primary
// confidence (strictly below the threshold), unresolved prefix, or a
// confusable character surviving inside the prefix span.
func (o *Orchestrator) needSecondary(raw RawRecognition, code normalize.Code, force bool) bool {
	switch {
	case force:
		return true
	case raw.Confidence < o.cfg.ConfidenceThreshold:
		return true
	case !code.Resolved():
		return true
	case o.confusableInPrefix(code):
		return true
	}
	return false
}

// confusableInPrefix reports a residual O/I/L inside the prefix span of
// the corrected text. Registered prefixes never contain them, so their
// presence means correction could not fully repair the reading.
func (o *Orchestrator) confusableInPrefix(code normalize.Code) bool {
	span := o.reg.MaxPrefixLen()
	if code.Resolved() {
		span = len(code.Prefix)
	}
	if span > len(code.Corrected) {
		span = len(code.Corrected)
	}
	return strings.ContainsAny(code.Corrected[:span], "OIL")
}

// reconcile merges the secondary reading into the resolution. The result
// whose prefix resolves wins; when both resolve, the secondary is
// preferred and a prefix disagreement is surfaced as a signal.
func (o *Orchestrator) reconcile(res *Resolution, sraw RawRecognition) {
	scode := normalize.Normalize(sraw.Text, o.reg)

	switch {
	case scode.Resolved() && !res.Code.Resolved():
		res.Code = scode
	case !scode.Resolved() && res.Code.Resolved():
		// Keep the primary; an unresolved secondary adds nothing.
	case scode.Resolved() && res.Code.Resolved():
		if scode.Prefix != res.Code.Prefix {
			res.Disagreement = true
			res.Notes = append(res.Notes, fmt.Sprintf(
				"recognizers disagree on prefix: primary %s, secondary %s",
				res.Code.Prefix, scode.Prefix))
		}
		res.Code = scode
	default:
		// Neither resolves; take the higher-precision source's best effort.
		res.Code = scode
	}
}

package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoforense/motoscan/internal/forensics"
	"github.com/motoforense/motoscan/internal/normalize"
	"github.com/motoforense/motoscan/internal/registry"
	"github.com/motoforense/motoscan/internal/visual"
)

func cleanInputs() Inputs {
	return Inputs{
		Validation: normalize.Validation{Valid: true},
		Findings: &forensics.Findings{
			DetectedType: registry.EngravingStamped,
			ExpectedType: registry.EngravingStamped,
		},
	}
}

func TestAggregateCleanInputs(t *testing.T) {
	a := Aggregate(cleanInputs(), DefaultWeights(), DefaultThresholds())

	assert.Equal(t, 0, a.Score)
	assert.Equal(t, VerdictRegular, a.Verdict)
	assert.Empty(t, a.Contributions)
	assert.Empty(t, a.Explanation)
}

func TestAggregateFraudShortCircuits(t *testing.T) {
	in := cleanInputs()
	in.Fraud = &FraudMatch{Code: "MD09E1B215797", FraudType: "renumbered", Exact: true}
	in.Validation = normalize.Validation{Valid: false, Issues: []string{"unknown prefix"}}
	in.Notes = []string{"secondary recognizer unavailable"}

	a := Aggregate(in, DefaultWeights(), DefaultThresholds())

	assert.Equal(t, MaxScore, a.Score)
	assert.Equal(t, VerdictHighSuspicion, a.Verdict)
	require.NotEmpty(t, a.Explanation)
	assert.Contains(t, a.Explanation[0], "confirmed fraud case MD09E1B215797")
	// Other signals are irrelevant once a confirmed match exists.
	assert.Equal(t, map[string]int{SignalKnownFraud: 100}, a.Contributions)
	// Informational notes still surface.
	assert.Contains(t, a.Explanation, "secondary recognizer unavailable")
}

func TestAggregateInvalidFormat(t *testing.T) {
	in := cleanInputs()
	in.Validation = normalize.Validation{Valid: false, Issues: []string{"length 9 outside expected range"}}

	a := Aggregate(in, DefaultWeights(), DefaultThresholds())

	assert.Equal(t, 25, a.Score)
	assert.Equal(t, VerdictVerify, a.Verdict)
	assert.Contains(t, a.Explanation[0], "length 9 outside expected range")
}

func TestAggregateEngravingMismatch(t *testing.T) {
	in := cleanInputs()
	in.Findings.DetectedType = registry.EngravingLaser
	in.Findings.ExpectedType = registry.EngravingStamped

	a := Aggregate(in, DefaultWeights(), DefaultThresholds())

	assert.Equal(t, 30, a.Score)
	assert.Equal(t, VerdictVerify, a.Verdict)
	assert.Contains(t, a.Explanation[0], "LASER engraving detected where STAMPED is expected")
}

func TestAggregateUnknownDetectionNeverMismatches(t *testing.T) {
	in := cleanInputs()
	in.Findings.DetectedType = registry.EngravingUnknown
	in.Findings.ExpectedType = registry.EngravingLaser

	a := Aggregate(in, DefaultWeights(), DefaultThresholds())
	assert.Equal(t, 0, a.Score)
}

func TestAggregateMixedTypesOutweighsSingleGap(t *testing.T) {
	in := cleanInputs()
	in.Findings.HasMixedTypes = true
	in.Findings.GapFlags = map[int]bool{2: true, 4: false}

	a := Aggregate(in, DefaultWeights(), DefaultThresholds())

	assert.Equal(t, 55, a.Score)
	assert.Equal(t, VerdictSuspect, a.Verdict)
	assert.Equal(t, 45, a.Contributions[SignalMixedTypes])
	assert.Equal(t, 10, a.Contributions[SignalGapAnomalies])
	// Heavier contribution explains first.
	assert.Contains(t, a.Explanation[0], "mixed engraving techniques")
}

func TestAggregateGapAnomaliesCapped(t *testing.T) {
	in := cleanInputs()
	in.Findings.GapFlags = map[int]bool{0: true, 1: true, 3: true, 4: true, 6: true}

	a := Aggregate(in, DefaultWeights(), DefaultThresholds())

	assert.Equal(t, 30, a.Contributions[SignalGapAnomalies])
	assert.Contains(t, a.Explanation[0], "5 high-risk character(s)")
}

func TestAggregateVisualDissimilarity(t *testing.T) {
	in := cleanInputs()
	in.Visual = &visual.MatchResult{ReferenceID: "MD09E", Overall: 0.50}

	a := Aggregate(in, DefaultWeights(), DefaultThresholds())

	// int(8*0.5 + 0.5) rounds to 4.
	assert.Equal(t, 4, a.Contributions[SignalVisualMismatch])
	assert.Contains(t, a.Explanation[0], "reference set MD09E")
}

func TestAggregateVisualAboveThresholdIgnored(t *testing.T) {
	in := cleanInputs()
	in.Visual = &visual.MatchResult{ReferenceID: "MD09E", Overall: 0.80}

	a := Aggregate(in, DefaultWeights(), DefaultThresholds())
	assert.Equal(t, 0, a.Score)
}

func TestAggregateMisalignmentNeedsDeviationAboveTolerance(t *testing.T) {
	in := cleanInputs()
	in.Findings.MisalignedChars = []int{3}
	in.Findings.AlignmentDeviation = 0.10

	a := Aggregate(in, DefaultWeights(), DefaultThresholds())
	assert.Equal(t, 0, a.Score)

	in.Findings.AlignmentDeviation = 0.20
	a = Aggregate(in, DefaultWeights(), DefaultThresholds())
	assert.Equal(t, 5, a.Contributions[SignalMisalignment])
}

func TestAggregateRecognizerDisagreement(t *testing.T) {
	in := cleanInputs()
	in.Disagreement = true

	a := Aggregate(in, DefaultWeights(), DefaultThresholds())

	assert.Equal(t, 5, a.Contributions[SignalRecognizerSplit])
	assert.Contains(t, a.Explanation[0], "resolved different prefixes")
}

func TestAggregateClampsAtMax(t *testing.T) {
	in := cleanInputs()
	in.Validation = normalize.Validation{Valid: false}
	in.Findings.HasMixedTypes = true
	in.Findings.DetectedType = registry.EngravingLaser
	in.Findings.ExpectedType = registry.EngravingStamped
	in.Findings.GapFlags = map[int]bool{0: true, 1: true, 2: true, 3: true}
	in.Disagreement = true

	a := Aggregate(in, DefaultWeights(), DefaultThresholds())

	// 25+45+30+30+5 exceeds the bound.
	assert.Equal(t, MaxScore, a.Score)
	assert.Equal(t, VerdictHighSuspicion, a.Verdict)
}

func TestAggregateDeterministicExplanationOrder(t *testing.T) {
	// Two signals with equal weight force the name tiebreak.
	in := cleanInputs()
	in.Findings.MisalignedChars = []int{1, 4}
	in.Findings.AlignmentDeviation = 0.30
	in.Disagreement = true

	first := Aggregate(in, DefaultWeights(), DefaultThresholds())
	for i := 0; i < 20; i++ {
		again := Aggregate(in, DefaultWeights(), DefaultThresholds())
		assert.Equal(t, first.Explanation, again.Explanation)
		assert.Equal(t, first.Contributions, again.Contributions)
	}
	require.Len(t, first.Explanation, 2)
	assert.Contains(t, first.Explanation[0], "off the engraving baseline")
	assert.Contains(t, first.Explanation[1], "recognizers resolved different prefixes")
}

func TestWeightsValidate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())

	w := DefaultWeights()
	w.MixedTypes = 120
	assert.Error(t, w.Validate(), "mixed types must stay below known fraud")

	w = DefaultWeights()
	w.GapAnomaly = 40
	assert.Error(t, w.Validate(), "a single gap must stay below format penalties")

	w = DefaultWeights()
	w.GapAnomalyCap = 5
	assert.Error(t, w.Validate(), "cap below a single anomaly")

	w = DefaultWeights()
	w.Misalignment = 9
	assert.Error(t, w.Validate(), "alignment must stay below the visual penalty")
}

func TestThresholdsValidate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())

	assert.Error(t, Thresholds{}.Validate())

	assert.Error(t, Thresholds{
		{Verdict: VerdictRegular, Low: 5, High: 100},
	}.Validate(), "first tier must start at 0")

	assert.Error(t, Thresholds{
		{Verdict: VerdictRegular, Low: 0, High: 10},
		{Verdict: VerdictVerify, Low: 12, High: 100},
	}.Validate(), "tiers must be contiguous")

	assert.Error(t, Thresholds{
		{Verdict: VerdictRegular, Low: 0, High: 99},
	}.Validate(), "last tier must end at the score bound")

	assert.Error(t, Thresholds{
		{Verdict: VerdictRegular, Low: 0, High: 60},
		{Verdict: VerdictVerify, Low: 61, High: 40},
	}.Validate(), "inverted range")
}

func TestVerdictForBoundaries(t *testing.T) {
	tiers := DefaultThresholds()
	cases := map[int]Verdict{
		0:   VerdictRegular,
		10:  VerdictRegular,
		11:  VerdictVerify,
		30:  VerdictVerify,
		31:  VerdictSuspect,
		60:  VerdictSuspect,
		61:  VerdictHighSuspicion,
		100: VerdictHighSuspicion,
	}
	for score, want := range cases {
		assert.Equal(t, want, tiers.VerdictFor(score), "score %d", score)
	}
	assert.Equal(t, VerdictHighSuspicion, tiers.Max())
}

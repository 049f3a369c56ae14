package pipeline

import (
	"context"
	"image"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoforense/motoscan/internal/recognize"
	"github.com/motoforense/motoscan/internal/risk"
	"github.com/motoforense/motoscan/internal/store"
	"github.com/motoforense/motoscan/internal/testutil"
)

// fakeRecognizer returns a fixed reading.
type fakeRecognizer struct {
	text string
	conf float64
	src  recognize.Source
	err  error
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ image.Image) (recognize.RawRecognition, error) {
	if f.err != nil {
		return recognize.RawRecognition{}, f.err
	}
	return recognize.RawRecognition{Text: f.text, Confidence: f.conf, Source: f.src}, nil
}

func (f *fakeRecognizer) Source() recognize.Source { return f.src }

// flatImage is featureless metal: the technique classifier reads it as
// stamped with moderate confidence.
func flatImage() image.Image {
	img := image.NewGray(image.Rect(0, 0, 200, 60))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	return img
}

func buildTestPipeline(t *testing.T, primary, secondary recognize.Recognizer) *Pipeline {
	t.Helper()
	p, err := NewBuilder().
		WithRecognizers(primary, secondary).
		Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestAnalyzeRegularStampedEra(t *testing.T) {
	p := buildTestPipeline(t, &fakeRecognizer{
		text: "KC08E-1102334", conf: 0.95, src: recognize.SourcePrimary,
	}, nil)

	res, err := p.Analyze(context.Background(), flatImage(), Meta{Year: 2005})
	require.NoError(t, err)

	assert.True(t, res.Validation.Valid, "issues: %v", res.Validation.Issues)
	assert.Equal(t, "KC08E", res.Code.Prefix)
	assert.Equal(t, "CG 125 Titan", res.ExpectedModel)
	assert.Equal(t, 0, res.Assessment.Score)
	assert.Equal(t, risk.VerdictRegular, res.Assessment.Verdict)
	assert.False(t, res.Recognition.SecondaryInvoked)
}

func TestAnalyzeEngravingMismatchEscalates(t *testing.T) {
	p := buildTestPipeline(t, &fakeRecognizer{
		text: "MD09E1-B215797", conf: 0.95, src: recognize.SourcePrimary,
	}, nil)

	// A 2020 motor must be laser engraved; the flat image reads as
	// stamped.
	res, err := p.Analyze(context.Background(), flatImage(), Meta{Year: 2020})
	require.NoError(t, err)

	assert.Greater(t, res.Assessment.Score, 10)
	assert.NotEqual(t, risk.VerdictRegular, res.Assessment.Verdict)
	assert.Contains(t, res.Assessment.Contributions, "engraving_mismatch")
}

func TestAnalyzeLowConfidenceTriggersSecondary(t *testing.T) {
	secondary := &fakeRecognizer{
		text: "KC08E-1102334", conf: 0.93, src: recognize.SourceSecondary,
	}
	p := buildTestPipeline(t, &fakeRecognizer{
		text: "KC08E-1102334", conf: 0.69, src: recognize.SourcePrimary,
	}, secondary)

	res, err := p.Analyze(context.Background(), flatImage(), Meta{Year: 2005})
	require.NoError(t, err)

	assert.True(t, res.Recognition.SecondaryInvoked)
	assert.False(t, res.Recognition.Degraded)
	assert.Equal(t, risk.VerdictRegular, res.Assessment.Verdict)
}

func TestAnalyzeKnownFraudShortCircuits(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "frauds.db")
	db, err := store.Open(dbPath)
	require.NoError(t, err)
	_, err = db.AddFraud(context.Background(), store.FraudRecord{
		Code:      "KC08E-1102334",
		FraudType: "remarcacao",
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	p, err := NewBuilder().
		WithRecognizers(&fakeRecognizer{
			text: "KC08E-1102334", conf: 0.95, src: recognize.SourcePrimary,
		}, nil).
		WithStorePath(dbPath).
		Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	res, err := p.Analyze(context.Background(), flatImage(), Meta{Year: 2005})
	require.NoError(t, err)

	assert.Equal(t, risk.MaxScore, res.Assessment.Score)
	assert.Equal(t, risk.VerdictHighSuspicion, res.Assessment.Verdict)
	require.NotNil(t, res.Fraud)
	assert.True(t, res.Fraud.Exact)
}

func TestAnalyzeRejectsNilImage(t *testing.T) {
	p := buildTestPipeline(t, &fakeRecognizer{text: "X", conf: 1, src: recognize.SourcePrimary}, nil)

	_, err := p.Analyze(context.Background(), nil, Meta{Year: 2020})
	assert.ErrorIs(t, err, ErrNilImage)
}

func TestAnalyzeRejectsImplausibleYear(t *testing.T) {
	p := buildTestPipeline(t, &fakeRecognizer{text: "X", conf: 1, src: recognize.SourcePrimary}, nil)

	for _, year := range []int{0, 1969, 2300} {
		_, err := p.Analyze(context.Background(), flatImage(), Meta{Year: year})
		assert.ErrorIs(t, err, ErrInvalidYear, "year %d", year)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	p := buildTestPipeline(t, &fakeRecognizer{
		text: "MD09E1-B215797", conf: 0.95, src: recognize.SourcePrimary,
	}, nil)

	first, err := p.Analyze(context.Background(), flatImage(), Meta{Year: 2020})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := p.Analyze(context.Background(), flatImage(), Meta{Year: 2020})
		require.NoError(t, err)
		assert.Equal(t, first.Assessment.Score, again.Assessment.Score)
		assert.Equal(t, first.Assessment.Verdict, again.Assessment.Verdict)
		assert.Equal(t, first.Assessment.Explanation, again.Assessment.Explanation)
	}
}

func TestBuilderValidateRejectsBadPolicy(t *testing.T) {
	w := risk.DefaultWeights()
	w.MixedTypes = w.KnownFraud + 10

	_, err := NewBuilder().
		WithRecognizers(&fakeRecognizer{src: recognize.SourcePrimary}, nil).
		WithWeights(w).
		Build()
	assert.Error(t, err)
}

func TestBuilderRequiresModelOrRecognizer(t *testing.T) {
	_, err := NewBuilder().Build()
	assert.Error(t, err)
}

func TestAnalyzeSyntheticPlate(t *testing.T) {
	code := "KC08E1102334"
	p := buildTestPipeline(t, &fakeRecognizer{
		text: code, conf: 0.95, src: recognize.SourcePrimary,
	}, nil)

	res, err := p.Analyze(context.Background(), testutil.SyntheticPlate(code), Meta{Year: 2005})
	require.NoError(t, err)

	assert.Equal(t, "KC08E", res.Code.Prefix)
	assert.True(t, res.Validation.Valid)
	require.NotNil(t, res.Findings)
	assert.Equal(t, len(code), res.Findings.CharCount)
	assert.GreaterOrEqual(t, res.Assessment.Score, risk.MinScore)
	assert.LessOrEqual(t, res.Assessment.Score, risk.MaxScore)
}

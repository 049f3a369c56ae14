package recognize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// row builds a one-hot probability row over len(Charset)+1 classes.
func row(class int) []float32 {
	r := make([]float32, len(Charset)+1)
	r[class] = 1
	return r
}

// classOf maps a charset byte to its CTC class index.
func classOf(c byte) int {
	for i := 0; i < len(Charset); i++ {
		if Charset[i] == c {
			return i + 1
		}
	}
	return 0
}

func matrix(rows ...[]float32) []float32 {
	var out []float32
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

func TestDecodeCTCCollapsesRepeats(t *testing.T) {
	classes := len(Charset) + 1
	m := matrix(
		row(classOf('M')),
		row(classOf('M')),
		row(classOf('D')),
		row(classOf('D')),
		row(classOf('0')),
	)

	text, conf := decodeCTC(m, 5, classes)
	assert.Equal(t, "MD0", text)
	assert.InDelta(t, 1.0, conf, 1e-9)
}

func TestDecodeCTCBlankSeparatesRepeats(t *testing.T) {
	classes := len(Charset) + 1
	m := matrix(
		row(classOf('9')),
		row(0), // blank
		row(classOf('9')),
	)

	text, _ := decodeCTC(m, 3, classes)
	assert.Equal(t, "99", text)
}

func TestDecodeCTCAllBlanks(t *testing.T) {
	classes := len(Charset) + 1
	m := matrix(row(0), row(0), row(0))

	text, conf := decodeCTC(m, 3, classes)
	assert.Empty(t, text)
	assert.Zero(t, conf)
}

func TestDecodeCTCMeanProbability(t *testing.T) {
	classes := len(Charset) + 1
	sure := row(classOf('K'))
	unsure := make([]float32, classes)
	unsure[classOf('C')] = 0.6
	unsure[classOf('0')] = 0.4

	text, conf := decodeCTC(matrix(sure, unsure), 2, classes)
	assert.Equal(t, "KC", text)
	assert.InDelta(t, 0.8, conf, 1e-6)
}

func TestDecodeCTCSoftmaxOnLogits(t *testing.T) {
	classes := len(Charset) + 1
	logits := make([]float32, classes)
	for i := range logits {
		logits[i] = -10
	}
	logits[classOf('A')] = 10

	text, conf := decodeCTC(logits, 1, classes)
	assert.Equal(t, "A", text)
	assert.Greater(t, conf, 0.99)
}

func TestDecodeCTCShortBuffer(t *testing.T) {
	text, conf := decodeCTC([]float32{1, 0}, 3, 10)
	assert.Empty(t, text)
	assert.Zero(t, conf)
}

func TestCleanText(t *testing.T) {
	cases := map[string]string{
		"md09e1-b215797":     "MD09E1-B215797",
		" MD09E1 B215797 ":   "MD09E1B215797",
		"MDÕ9É1B215797":      "MDO9E1B215797",
		"código: KC08E!!":    "CODIGOKC08E",
		"\tNC49E1F\n2345678": "NC49E1F2345678",
		"":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanText(in), "input %q", in)
	}
}

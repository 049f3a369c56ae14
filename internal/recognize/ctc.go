package recognize

import "math"

// Charset is the output alphabet of the local recognition model. Index 0
// is the CTC blank.
const Charset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ-"

// argmax returns the index and value of the maximum element.
func argmax(v []float32) (int, float32) {
	if len(v) == 0 {
		return -1, 0
	}
	idx := 0
	maxVal := v[0]
	for i := 1; i < len(v); i++ {
		if v[i] > maxVal {
			maxVal = v[i]
			idx = i
		}
	}
	return idx, maxVal
}

// stepProb returns the probability of v[idx]. Logit outputs are passed
// through a stable softmax; probability-like outputs are used as-is.
func stepProb(v []float32, idx int) float64 {
	if len(v) == 0 || idx < 0 || idx >= len(v) {
		return 0
	}
	var sum float64
	minV, maxV := v[0], v[0]
	for _, x := range v {
		sum += float64(x)
		if x < minV {
			minV = x
		}
		if x > maxV {
			maxV = x
		}
	}
	if sum > 0.99 && sum < 1.01 && minV >= 0 && maxV <= 1 {
		return float64(v[idx])
	}
	m := maxV
	var denom float64
	for _, x := range v {
		denom += math.Exp(float64(x - m))
	}
	if denom == 0 {
		return 0
	}
	return math.Exp(float64(v[idx]-m)) / denom
}

// decodeCTC greedily decodes a [steps x classes] probability matrix,
// collapsing repeats and dropping blanks (class 0). It returns the decoded
// text and the mean per-character probability.
func decodeCTC(data []float32, steps, classes int) (string, float64) {
	if steps <= 0 || classes <= 0 || len(data) < steps*classes {
		return "", 0
	}
	var out []rune
	var probSum float64
	prev := -1
	for t := 0; t < steps; t++ {
		row := data[t*classes : (t+1)*classes]
		idx, _ := argmax(row)
		if idx == 0 { // blank
			prev = idx
			continue
		}
		if idx == prev {
			continue
		}
		// Class i>0 maps to Charset[i-1].
		if idx-1 < len(Charset) {
			out = append(out, rune(Charset[idx-1]))
			probSum += stepProb(row, idx)
		}
		prev = idx
	}
	if len(out) == 0 {
		return "", 0
	}
	return string(out), probSum / float64(len(out))
}

package normalize

import (
	"fmt"
	"regexp"
)

// Plausible overall length bounds for an engraved engine code, prefix and
// serial included, separator excluded.
const (
	MinCodeLength = 8
	MaxCodeLength = 16
)

// serialPattern accepts the factory serial shape: an optional leading
// letter followed by six or seven digits.
var serialPattern = regexp.MustCompile(`^[A-Z]?\d{6,7}$`)

// Validation is the structural judgment of a normalized code. It never
// corrects anything.
type Validation struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}

// Validate checks a normalized code against its registry record. Pure and
// side-effect free; an unresolved prefix is reported as an issue, not an
// error.
func Validate(code Code) Validation {
	var issues []string

	stripped := len(code.Corrected)
	for _, r := range code.Corrected {
		if r == '-' {
			stripped--
		}
	}
	if stripped == 0 {
		return Validation{Valid: false, Issues: []string{"empty code"}}
	}
	if stripped < MinCodeLength || stripped > MaxCodeLength {
		issues = append(issues, fmt.Sprintf("implausible code length %d (want %d-%d)",
			stripped, MinCodeLength, MaxCodeLength))
	}

	if !code.Resolved() {
		issues = append(issues, "prefix not found in registry")
		return Validation{Valid: false, Issues: issues}
	}

	rec := code.Record()
	if !serialPattern.MatchString(code.Serial) {
		issues = append(issues, fmt.Sprintf("serial %q does not match factory pattern", code.Serial))
	}
	if rec.ExpectedLength > 0 {
		got := len(rec.Prefix) + len(code.Serial)
		// One character of slack: some production runs drop the serial
		// letter, some add a seventh digit.
		if got < rec.ExpectedLength-1 || got > rec.ExpectedLength+1 {
			issues = append(issues, fmt.Sprintf("code length %d differs from expected %d for prefix %s",
				got, rec.ExpectedLength, rec.Prefix))
		}
	}

	return Validation{Valid: len(issues) == 0, Issues: issues}
}

package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoforense/motoscan/internal/registry"
)

func validateText(t *testing.T, text string) Validation {
	t.Helper()
	return Validate(Normalize(text, registry.Default()))
}

func TestValidateWellFormedCode(t *testing.T) {
	v := validateText(t, "MD09E1-B215797")
	assert.True(t, v.Valid)
	assert.Empty(t, v.Issues)
}

func TestValidateEmptyCode(t *testing.T) {
	v := Validate(Code{})
	require.False(t, v.Valid)
	assert.Equal(t, []string{"empty code"}, v.Issues)
}

func TestValidateUnknownPrefix(t *testing.T) {
	v := validateText(t, "ZZ99X1234567")
	require.False(t, v.Valid)
	assert.Contains(t, v.Issues, "prefix not found in registry")
}

func TestValidateLengthBounds(t *testing.T) {
	short := validateText(t, "MD09E1")
	assert.False(t, short.Valid)

	long := validateText(t, "MD09E1"+strings.Repeat("9", 14))
	assert.False(t, long.Valid)
}

func TestValidateBadSerial(t *testing.T) {
	// Two letters before the digits is not a factory serial.
	v := validateText(t, "MD09E1BB21579")
	require.False(t, v.Valid)
	assert.NotEmpty(t, v.Issues)
}

func TestValidateLengthSlack(t *testing.T) {
	// Expected length 13 for MD09E1; a six-digit serial without the
	// letter lands at 12 and is still acceptable.
	v := validateText(t, "MD09E1-215797")
	assert.True(t, v.Valid, "issues: %v", v.Issues)
}

func TestValidateSeparatorExcludedFromLength(t *testing.T) {
	with := validateText(t, "MD09E1-B215797")
	without := validateText(t, "MD09E1B215797")
	assert.Equal(t, with.Valid, without.Valid)
}

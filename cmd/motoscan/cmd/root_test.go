package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoforense/motoscan/internal/registry"
)

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "motoscan", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCommandHelp(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"--help"})

	require.NoError(t, rootCmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "tampering")
	assert.Contains(t, output, "Available Commands:")
	assert.Contains(t, output, "analyze")
	assert.Contains(t, output, "serve")
}

func TestPrefixesCommandJSON(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"prefixes", "--format", "json"})

	require.NoError(t, rootCmd.Execute())

	var records []registry.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	assert.Len(t, records, registry.Default().Len())
}

func TestAnalyzeCommandRequiresYear(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"analyze", "missing.jpg"})

	assert.Error(t, rootCmd.Execute())
}

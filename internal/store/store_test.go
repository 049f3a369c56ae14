package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "motoscan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLookupFraudExactMatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.AddFraud(ctx, FraudRecord{
		Code:        "MD09E1-B215797",
		FraudType:   "remarcacao",
		Description: "numeral 4 regravado sobre 1",
	})
	require.NoError(t, err)

	rec, exact, err := s.LookupFraud(ctx, "md09e1b215797")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, exact)
	assert.Equal(t, "remarcacao", rec.FraudType)
	assert.Equal(t, "MD09E1", rec.Prefix)
}

func TestLookupFraudNoMatch(t *testing.T) {
	s := openTestStore(t)

	rec, exact, err := s.LookupFraud(context.Background(), "NC49E1F9999999")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.False(t, exact)
}

func TestLookupFraudEmptyCode(t *testing.T) {
	s := openTestStore(t)

	rec, _, err := s.LookupFraud(context.Background(), "  ")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestAddFraudRejectsEmptyCode(t *testing.T) {
	s := openTestStore(t)

	_, err := s.AddFraud(context.Background(), FraudRecord{Code: ""})
	assert.Error(t, err)
}

func TestAddOriginalAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, code := range []string{"MD09E1-B215797", "MD09E1-B301442", "KC08E-1102334"} {
		_, err := s.AddOriginal(ctx, OriginalRecord{Code: code, Model: "XRE 300", Year: 2020, EngravingType: "laser"})
		require.NoError(t, err)
	}

	got, err := s.Originals(ctx, "MD09E1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "MD09E1B215797", got[0].Code)
	assert.Equal(t, "LASER", got[0].EngravingType)

	frauds, originals, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, frauds)
	assert.Equal(t, 3, originals)
}

func TestPrefixOf(t *testing.T) {
	cases := map[string]string{
		"MD09E1B215797":  "MD09E1",
		"MD09E1-B215797": "MD09E1",
		"KC08E1102334":   "KC08E",
		"NC49E1F2345678": "NC49E1",
	}
	for code, want := range cases {
		assert.Equal(t, want, prefixOf(canonical(code)), code)
	}
}

package common

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestMistToSUI(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		mist uint64
		sui  string
	}{
		{0, "0.000000000"},
		{1, "0.000000001"},
		{24981836, "0.024981836"},
		{1_000_000_000, "1.000000000"},
		{1_234_567_890_123, "1234.567890123"},
		{math.MaxUint64, "18446744073.709551615"},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.sui, MistToSUI(tc.mist))

		mist, err := SUIToMist(tc.sui)
		require.NoError(t, err)
		require.Equal(t, tc.mist, mist)
	}
}

func TestSUIToMistShortForms(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		mist uint64
	}{
		{"1", 1_000_000_000},
		{"1.5", 1_500_000_000},
		{".5", 500_000_000},
		{"2.", 2_000_000_000},
		{" 0.1 ", 100_000_000},
		{"0.1000000000", 100_000_000},
	}

	for _, tc := range testCases {
		mist, err := SUIToMist(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.mist, mist, tc.in)
	}
}

func TestSUIToMistRejects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"", ".", "abc", "1.2.3", "-1", "+1", "1e9",
		"0.0000000001",          // below one MIST
		"18446744073.709551616", // one MIST above max
		"99999999999999999999",
	} {
		_, err := SUIToMist(in)
		require.Error(t, err, in)
	}
}

// TestMistRoundTrip checks the display conversion is exact for every amount.
func TestMistRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		mist := rapid.Uint64().Draw(t, "mist")

		got, err := SUIToMist(MistToSUI(mist))
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if got != mist {
			t.Fatalf("round trip mismatch: %d != %d", got, mist)
		}
	})
}

func TestFormatSUIAndFiat(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1.2345 SUI", FormatSUI(1_234_567_890))
	require.Equal(t, "0.0000 SUI", FormatSUI(10))

	fiat, err := FiatValue(2_500_000_000, "3.10")
	require.NoError(t, err)
	require.Equal(t, "7.75", fiat)

	_, err = FiatValue(1, "n/a")
	require.Error(t, err)
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "blob.dat")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), 0600))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	exists, err := FileExists(path)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = FileExists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	require.False(t, exists)
}

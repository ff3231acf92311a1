package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/untreu2/aircommit/acerr"
)

func TestTones_FrequencyMapping(t *testing.T) {
	events, err := Tones("Aa0+/=")
	require.NoError(t, err)
	require.Len(t, events, 6)

	want := []float64{
		300,  // 'A', index 0
		1600, // 'a', index 26
		2900, // '0', index 52
		3400, // '+', index 62
		3450, // '/', index 63
		3500, // '=', index 64
	}
	for i, ev := range events {
		assert.Equal(t, want[i], ev.Frequency, "event %d (%q)", i, ev.Char)
		assert.Equal(t, ToneDuration, ev.Duration)
	}
}

func TestTones_MappingIsBijective(t *testing.T) {
	seen := map[float64]byte{}
	for i := 0; i < len(Alphabet); i++ {
		freq, err := FrequencyFor(Alphabet[i])
		require.NoError(t, err)
		_, dup := seen[freq]
		require.False(t, dup, "frequency %v assigned twice", freq)
		seen[freq] = Alphabet[i]

		c, ok := nearestBin(freq)
		require.True(t, ok)
		assert.Equal(t, Alphabet[i], c)
	}
	assert.Len(t, seen, 65)
}

func TestEncode_BufferShape(t *testing.T) {
	samples, err := Encode("acAB", DefaultSampleRate)
	require.NoError(t, err)
	assert.Len(t, samples, 4*2205)

	for _, s := range samples {
		assert.LessOrEqual(t, math.Abs(s), Amplitude+1e-9)
	}
	// Tapered edges: tone boundaries start and end near zero.
	assert.InDelta(t, 0, samples[0], 1e-9)
	assert.InDelta(t, 0, samples[2204], 0.05)
	assert.InDelta(t, 0, samples[2205], 1e-9)
}

func TestEncodeDecode_RoundTrip_FullAlphabet(t *testing.T) {
	samples, err := Encode(Alphabet, DefaultSampleRate)
	require.NoError(t, err)

	got, err := Decode(samples, DefaultSampleRate)
	require.NoError(t, err)
	assert.Equal(t, Alphabet, got)
}

func TestEncodeDecode_RoundTrip_ContainerShapedLine(t *testing.T) {
	line := "acU29tZSBleGFtcGxlIGNvbnRlbnQ=acsig1qw508d6qejxtdg4y5r3zarvary0c5xw7k"
	for _, rate := range []int{8000, DefaultSampleRate, 48000} {
		samples, err := Encode(line, rate)
		require.NoError(t, err, "rate %d", rate)
		got, err := Decode(samples, rate)
		require.NoError(t, err, "rate %d", rate)
		assert.Equal(t, line, got, "rate %d", rate)
	}
}

func TestDecode_SilentWindowReportsIndex(t *testing.T) {
	samples, err := Encode("acsig", DefaultSampleRate)
	require.NoError(t, err)

	// Silence the third character's window.
	n := 2205
	for i := 2 * n; i < 3*n; i++ {
		samples[i] = 0
	}

	_, err = Decode(samples, DefaultSampleRate)
	require.Error(t, err)
	require.True(t, acerr.IsKind(err, acerr.KindSignal), "got %v", err)
	assert.Equal(t, "AC-TONE-010", acerr.RuleID(err))

	var te *ToneError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 2, te.Window)
}

func TestDecode_OffBinToneRejected(t *testing.T) {
	// A tone halfway between two bins matches neither.
	rate := DefaultSampleRate
	n := 2205
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / float64(rate)
		samples[i] = Amplitude * math.Sin(2*math.Pi*325*t)
	}
	_, err := Decode(samples, rate)
	require.Error(t, err)
	var te *ToneError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 0, te.Window)
}

func TestEncode_InvalidInputs(t *testing.T) {
	_, err := Encode("ac!", DefaultSampleRate)
	assert.Equal(t, "AC-TONE-001", acerr.RuleID(err))

	_, err = Encode("ac", 0)
	assert.Equal(t, "AC-TONE-002", acerr.RuleID(err))

	_, err = Encode("", DefaultSampleRate)
	assert.Equal(t, "AC-TONE-003", acerr.RuleID(err))
}

func TestDecode_InvalidInputs(t *testing.T) {
	_, err := Decode(nil, DefaultSampleRate)
	assert.Equal(t, "AC-TONE-003", acerr.RuleID(err))

	_, err = Decode([]float64{0.1}, -1)
	assert.Equal(t, "AC-TONE-002", acerr.RuleID(err))
}

func TestNearestBin_ToleranceBounds(t *testing.T) {
	_, ok := nearestBin(BaseFrequency - Tolerance - 1)
	assert.False(t, ok)

	_, ok = nearestBin(BaseFrequency + FrequencyStep*64 + Tolerance + 1)
	assert.False(t, ok)

	c, ok := nearestBin(BaseFrequency + FrequencyStep + Tolerance/2)
	require.True(t, ok)
	assert.Equal(t, byte('B'), c)
}

// Package audio turns AC container text into a tone sequence and recovers
// the text from a recorded waveform.
//
// Every character of the container maps to one sine tone: frequency is
// 300 Hz plus 50 Hz per alphabet index over the 65-symbol set (the standard
// Base64 alphabet plus '='). An AC line is tone-safe in full: the "ac" tag,
// Base64 payload and bech32 signature all draw from that set.
//
// Both directions are pure batch transforms over sample buffers; microphone
// and speaker I/O stay with external collaborators.
package audio

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/untreu2/aircommit/acerr"
)

// Alphabet is the 65-symbol tone alphabet. A character's position is its
// frequency index.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="

const (
	// BaseFrequency is the tone of alphabet index 0, in Hz.
	BaseFrequency = 300.0
	// FrequencyStep separates adjacent alphabet indices, in Hz.
	FrequencyStep = 50.0
	// ToneDuration is the length of one character's tone, in seconds.
	ToneDuration = 0.05
	// Amplitude scales the synthesized sine waves.
	Amplitude = 0.5
	// DefaultSampleRate is the rate the original tooling records at.
	DefaultSampleRate = 44100
)

// Tolerance is how far a measured peak may sit from its nearest bin before
// the window is rejected as ambiguous. It must stay under FrequencyStep/2
// so bins remain disjoint. A 0.05 s window only resolves 20 Hz on the raw
// FFT grid, so the peak is refined by parabolic interpolation before
// matching; that keeps clean-tone measurement error under a few Hz.
const Tolerance = 10.0

// fadeDuration is the raised-cosine taper applied at both ends of each
// tone. A hard edge leaks energy across the spectrum and corrupts the
// neighboring windows' peaks.
const fadeDuration = 0.002

// ToneEvent is one character's (frequency, duration) unit.
type ToneEvent struct {
	Char      byte
	Frequency float64 // Hz
	Duration  float64 // seconds
}

// ToneError identifies the analysis window whose dominant frequency matched
// no alphabet bin, so the capture loop can retry just that stretch.
type ToneError struct {
	Window int     // 0-based window index
	PeakHz float64 // measured dominant frequency
}

func (e *ToneError) Error() string {
	return fmt.Sprintf("window %d: peak %.1f Hz matches no tone bin", e.Window, e.PeakHz)
}

func alphabetIndex(c byte) int {
	return strings.IndexByte(Alphabet, c)
}

// FrequencyFor returns the tone frequency of an alphabet character.
func FrequencyFor(c byte) (float64, error) {
	idx := alphabetIndex(c)
	if idx < 0 {
		return 0, acerr.New(acerr.KindEncoding, "AC-TONE-001",
			fmt.Sprintf("character %q is outside the tone alphabet", c))
	}
	return BaseFrequency + FrequencyStep*float64(idx), nil
}

// Tones maps container text to its tone sequence in strict text order.
func Tones(line string) ([]ToneEvent, error) {
	if line == "" {
		return nil, acerr.New(acerr.KindEncoding, "AC-TONE-003", "nothing to encode")
	}
	events := make([]ToneEvent, 0, len(line))
	for i := 0; i < len(line); i++ {
		freq, err := FrequencyFor(line[i])
		if err != nil {
			return nil, err
		}
		events = append(events, ToneEvent{Char: line[i], Frequency: freq, Duration: ToneDuration})
	}
	return events, nil
}

// Encode synthesizes the tone sequence for line into a mono sample buffer.
// One strictly sequential pass; no I/O.
func Encode(line string, sampleRate int) ([]float64, error) {
	if sampleRate < 1 {
		return nil, acerr.New(acerr.KindEncoding, "AC-TONE-002",
			fmt.Sprintf("sample rate must be positive, got %d", sampleRate))
	}
	events, err := Tones(line)
	if err != nil {
		return nil, err
	}
	samplesPerTone := toneSamples(sampleRate)
	out := make([]float64, 0, len(events)*samplesPerTone)
	for _, ev := range events {
		out = appendTone(out, ev.Frequency, sampleRate, samplesPerTone)
	}
	return out, nil
}

func toneSamples(sampleRate int) int {
	return int(math.Round(float64(sampleRate) * ToneDuration))
}

func appendTone(buf []float64, freq float64, sampleRate, n int) []float64 {
	fade := int(math.Round(float64(sampleRate) * fadeDuration))
	if 2*fade > n {
		fade = n / 2
	}
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		s := Amplitude * math.Sin(2*math.Pi*freq*t)
		// Raised-cosine taper at both tone edges.
		switch {
		case i < fade:
			s *= 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(fade)))
		case i >= n-fade:
			s *= 0.5 * (1 - math.Cos(math.Pi*float64(n-1-i)/float64(fade)))
		}
		buf = append(buf, s)
	}
	return buf
}

// minPeakFraction is the fraction of a full-scale tone's spectral peak a
// window must reach; windows below it are treated as silence, which is
// ambiguous and therefore an error.
const minPeakFraction = 0.05

// Decode recovers container text from a mono sample buffer.
//
// The buffer is cut into fixed ToneDuration windows; each window's dominant
// frequency comes from an FFT magnitude peak and is matched to the nearest
// alphabet bin within Tolerance. Ambiguous windows are reported by index,
// never guessed.
func Decode(samples []float64, sampleRate int) (string, error) {
	if sampleRate < 1 {
		return "", acerr.New(acerr.KindEncoding, "AC-TONE-002",
			fmt.Sprintf("sample rate must be positive, got %d", sampleRate))
	}
	if len(samples) == 0 {
		return "", acerr.New(acerr.KindEncoding, "AC-TONE-003", "empty sample buffer")
	}

	n := toneSamples(sampleRate)
	fft := fourier.NewFFT(n)
	window := make([]float64, n)
	coeffs := make([]complex128, n/2+1)

	numWindows := (len(samples) + n - 1) / n
	var sb strings.Builder
	for w := 0; w < numWindows; w++ {
		start := w * n
		end := start + n
		if end > len(samples) {
			end = len(samples)
		}
		copy(window, samples[start:end])
		for i := end - start; i < n; i++ {
			window[i] = 0 // zero-pad a short final window
		}

		coeffs = fft.Coefficients(coeffs, window)
		peakHz, peakMag := dominantFrequency(fft, coeffs, sampleRate)
		if peakMag < minPeakFraction*Amplitude*float64(n)/2 {
			return "", acerr.Wrap(acerr.KindSignal, "AC-TONE-010",
				fmt.Sprintf("window %d is silent or too noisy", w),
				&ToneError{Window: w, PeakHz: peakHz})
		}

		c, ok := nearestBin(peakHz)
		if !ok {
			return "", acerr.Wrap(acerr.KindSignal, "AC-TONE-010",
				fmt.Sprintf("window %d has no tone within tolerance", w),
				&ToneError{Window: w, PeakHz: peakHz})
		}
		sb.WriteByte(c)
	}
	return sb.String(), nil
}

func dominantFrequency(fft *fourier.FFT, coeffs []complex128, sampleRate int) (hz, magnitude float64) {
	best := 1 // skip the DC coefficient
	bestMag := 0.0
	for i := 1; i < len(coeffs); i++ {
		if m := cmplx.Abs(coeffs[i]); m > bestMag {
			best, bestMag = i, m
		}
	}

	// Parabolic interpolation over the peak and its neighbors refines the
	// estimate well below the raw grid spacing.
	offset := 0.0
	if best > 1 && best < len(coeffs)-1 {
		alpha := cmplx.Abs(coeffs[best-1])
		beta := bestMag
		gamma := cmplx.Abs(coeffs[best+1])
		if denom := alpha - 2*beta + gamma; denom != 0 {
			offset = 0.5 * (alpha - gamma) / denom
		}
	}
	return (fft.Freq(best) + offset*fft.Freq(1)) * float64(sampleRate), bestMag
}

func nearestBin(hz float64) (byte, bool) {
	idx := int(math.Round((hz - BaseFrequency) / FrequencyStep))
	if idx < 0 || idx >= len(Alphabet) {
		return 0, false
	}
	expected := BaseFrequency + FrequencyStep*float64(idx)
	if math.Abs(hz-expected) > Tolerance {
		return 0, false
	}
	return Alphabet[idx], true
}

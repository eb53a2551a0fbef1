package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// Spectrum is a one-sided amplitude spectrum.
type Spectrum struct {
	Freqs      []float64 // Hz
	Amplitudes []float64
}

// PowerSpectrum transforms data sampled every dt seconds. The mean is
// removed first so a cruising trace does not bury everything under DC.
// Non-finite samples are treated as zero.
func PowerSpectrum(data []float64, dt float64) Spectrum {
	n := len(data)
	if n < 2 || dt <= 0 {
		return Spectrum{}
	}

	seq := make([]float64, n)
	for i, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			seq[i] = v
		}
	}
	mean := floats.Sum(seq) / float64(n)
	floats.AddConst(-mean, seq)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, seq)

	s := Spectrum{
		Freqs:      make([]float64, len(coeffs)),
		Amplitudes: make([]float64, len(coeffs)),
	}
	for i, c := range coeffs {
		s.Freqs[i] = fft.Freq(i) / dt
		s.Amplitudes[i] = cmplx.Abs(c) / float64(n)
	}
	return s
}

// Dominant returns the frequency with the largest amplitude, ignoring DC.
func (s Spectrum) Dominant() (freq, amp float64) {
	if len(s.Amplitudes) < 2 {
		return 0, 0
	}
	i := floats.MaxIdx(s.Amplitudes[1:]) + 1
	return s.Freqs[i], s.Amplitudes[i]
}

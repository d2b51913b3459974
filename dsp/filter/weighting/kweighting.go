package weighting

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-lkfs/dsp/core"
	"github.com/cwbudde/algo-lkfs/dsp/filter/biquad"
)

// BS.1770 analog prototype parameters.
const (
	shelfFreq       = 1681.974450955533
	shelfGainDB     = 3.999843853973347
	shelfQ          = 0.7071752369554196
	shelfVbExponent = 0.4996667741545416

	highPassFreq = 38.13547087602444
	highPassQ    = 0.5003270373238773
)

// ReferenceFrequency is the frequency (Hz) of the full-scale test tone at
// which the cascade gain is evaluated for calibration.
const ReferenceFrequency = 997.0

// RecalibrationTolerance is the sample-rate change (Hz) below which existing
// coefficients are kept.
const RecalibrationTolerance = 1.0

// KCoefficients is the calibrated K-weighting cascade for one sample rate.
type KCoefficients struct {
	SampleRate float64

	// Shelf is the stage 1 high-shelf section.
	Shelf biquad.Coefficients
	// HighPass is the stage 2 RLB section. Its numerator is the
	// unnormalized [1, -2, 1].
	HighPass biquad.Coefficients

	// Attenuation is |H(997 Hz)| of the full cascade (linear).
	Attenuation float64
}

// Calibrate derives the K-weighting sections for sampleRate and evaluates the
// cascade at [ReferenceFrequency].
//
// Panics if sampleRate <= 0.
func Calibrate(sampleRate float64) KCoefficients {
	if sampleRate <= 0 {
		panic("weighting: sample rate must be positive")
	}

	c := KCoefficients{
		SampleRate: sampleRate,
		Shelf:      highShelf(sampleRate),
		HighPass:   highPass(sampleRate),
	}
	c.Attenuation = cmplx.Abs(c.Response(ReferenceFrequency))

	return c
}

// highShelf computes the stage 1 section.
//
// With K = tan(pi*f0/fs), Vh = 10^(G/20), Vb = Vh^0.4997 and
// a0 = 1 + K/Q + K^2:
//
//	B0 = (Vh + Vb*K/Q + K^2)/a0, B1 = 2*(K^2 - Vh)/a0, B2 = (Vh - Vb*K/Q + K^2)/a0
//	A1 = 2*(K^2 - 1)/a0,         A2 = (1 - K/Q + K^2)/a0
func highShelf(fs float64) biquad.Coefficients {
	k := math.Tan(math.Pi * shelfFreq / fs)
	k2 := k * k
	vh := core.DBToLinear(shelfGainDB)
	vb := math.Pow(vh, shelfVbExponent)
	a0 := 1 + k/shelfQ + k2

	return biquad.Coefficients{
		B0: (vh + vb*k/shelfQ + k2) / a0,
		B1: 2 * (k2 - vh) / a0,
		B2: (vh - vb*k/shelfQ + k2) / a0,
		A1: 2 * (k2 - 1) / a0,
		A2: (1 - k/shelfQ + k2) / a0,
	}
}

// highPass computes the stage 2 section. Only the denominator is normalized.
func highPass(fs float64) biquad.Coefficients {
	k := math.Tan(math.Pi * highPassFreq / fs)
	k2 := k * k
	a0 := 1 + k/highPassQ + k2

	return biquad.Coefficients{
		B0: 1,
		B1: -2,
		B2: 1,
		A1: 2 * (k2 - 1) / a0,
		A2: (1 - k/highPassQ + k2) / a0,
	}
}

// Response returns the complex response of the full cascade at freqHz.
func (c *KCoefficients) Response(freqHz float64) complex128 {
	return biquad.CascadeResponse(freqHz, c.SampleRate, c.Shelf, c.HighPass)
}

// MagnitudeDB returns the cascade magnitude at freqHz in dB.
func (c *KCoefficients) MagnitudeDB(freqHz float64) float64 {
	return core.LinearToDB(cmplx.Abs(c.Response(freqHz)))
}

// CalibrationDB is the offset added to 10*log10(mean square) so that the
// K-weighting gain at 997 Hz cancels out: -20*log10(Attenuation).
func (c *KCoefficients) CalibrationDB() float64 {
	return -core.LinearToDB(c.Attenuation)
}

// NeedsRecalibration reports whether sampleRate differs from the calibrated
// rate by more than [RecalibrationTolerance]. Uncalibrated values always
// need calibration.
func (c *KCoefficients) NeedsRecalibration(sampleRate float64) bool {
	return c.SampleRate <= 0 || math.Abs(c.SampleRate-sampleRate) > RecalibrationTolerance
}

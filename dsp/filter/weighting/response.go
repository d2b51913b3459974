package weighting

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-lkfs/dsp/core"
	"github.com/cwbudde/algo-lkfs/dsp/filter/biquad"
)

// MeasuredResponse is the magnitude response of a [KFilter] obtained from the
// FFT of its impulse response.
type MeasuredResponse struct {
	SampleRate float64
	Size       int

	// MagnitudeDB holds bins 0..Size/2. The DC bin is far below every other
	// bin since the high-pass has a double zero there.
	MagnitudeDB []float64
}

// Frequency returns the centre frequency of bin in Hz.
func (r MeasuredResponse) Frequency(bin int) float64 {
	return float64(bin) * r.SampleRate / float64(r.Size)
}

// Bin returns the bin nearest to freqHz, clamped to the valid range.
func (r MeasuredResponse) Bin(freqHz float64) int {
	bin := int(freqHz*float64(r.Size)/r.SampleRate + 0.5)
	return min(max(bin, 0), len(r.MagnitudeDB)-1)
}

// MeasureResponse takes size samples of the impulse response of the cascade in
// c and returns its magnitude spectrum.
func MeasureResponse(c KCoefficients, size int) (MeasuredResponse, error) {
	if size < 2 {
		return MeasuredResponse{}, fmt.Errorf("weighting: response size must be >= 2: %d", size)
	}

	ir := c.Shelf.ImpulseResponse(size)
	var highPass biquad.DirectForm1
	highPass.ProcessBlock(&c.HighPass, ir)

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return MeasuredResponse{}, fmt.Errorf("weighting: fft plan: %w", err)
	}

	in := make([]complex128, size)
	for i, v := range ir {
		in[i] = complex(v, 0)
	}

	spec := make([]complex128, size)
	if err := plan.Forward(spec, in); err != nil {
		return MeasuredResponse{}, fmt.Errorf("weighting: fft: %w", err)
	}

	bins := size/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for i := range bins {
		re[i] = real(spec[i])
		im[i] = imag(spec[i])
	}

	power := make([]float64, bins)
	vecmath.Power(power, re, im)

	db := make([]float64, bins)
	for i, p := range power {
		db[i] = core.LinearPowerToDB(p)
	}

	return MeasuredResponse{
		SampleRate:  c.SampleRate,
		Size:        size,
		MagnitudeDB: db,
	}, nil
}

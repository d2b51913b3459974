package weighting

import "github.com/cwbudde/algo-lkfs/dsp/filter/biquad"

// KFilter runs the K-weighting cascade for one channel. It owns the memory of
// both stages and reads, but never modifies, a shared [KCoefficients].
type KFilter struct {
	coeffs *KCoefficients

	shelf    biquad.DirectForm1
	highPass biquad.DirectForm1
}

// NewKFilter returns a cleared filter bound to c.
func NewKFilter(c *KCoefficients) *KFilter {
	return &KFilter{coeffs: c}
}

// Reset clears the filter memory and binds the filter to c.
func (f *KFilter) Reset(c *KCoefficients) {
	f.coeffs = c
	f.shelf.Reset()
	f.highPass.Reset()
}

// Coefficients returns the bound coefficients.
func (f *KFilter) Coefficients() *KCoefficients {
	return f.coeffs
}

// ProcessSample filters one sample through the shelf and then the high-pass
// stage.
func (f *KFilter) ProcessSample(x float64) float64 {
	y := f.shelf.ProcessSample(&f.coeffs.Shelf, x)
	return f.highPass.ProcessSample(&f.coeffs.HighPass, y)
}

// ProcessBlock filters buf in place through the shelf and then the high-pass
// stage. Each stage runs sample by sample in order, so the output equals
// ProcessSample applied to every sample.
//
// Panics if the filter has no coefficients.
func (f *KFilter) ProcessBlock(buf []float64) {
	f.shelf.ProcessBlock(&f.coeffs.Shelf, buf)
	f.highPass.ProcessBlock(&f.coeffs.HighPass, buf)
}

// State returns the memory of both stages as [shelf, highPass], each in
// [x1, x2, y1, y2] order.
func (f *KFilter) State() [2][4]float64 {
	return [2][4]float64{f.shelf.State(), f.highPass.State()}
}

package biquad

// DirectForm1 is the memory of one section run in Direct Form I: the last
// two inputs and the last two outputs. The zero value is a cleared state.
//
// Each sample computes
//
//	y[n] = B0*x[n] + B1*x[n-1] + B2*x[n-2] - A1*y[n-1] - A2*y[n-2]
//
// strictly in order; there is no block-parallel variant.
type DirectForm1 struct {
	x1, x2 float64
	y1, y2 float64
}

// ProcessSample filters one sample with c and updates the state.
func (s *DirectForm1) ProcessSample(c *Coefficients, x float64) float64 {
	y := c.B0*x + c.B1*s.x1 + c.B2*s.x2 - c.A1*s.y1 - c.A2*s.y2

	s.x2 = s.x1
	s.x1 = x
	s.y2 = s.y1
	s.y1 = y

	return y
}

// ProcessBlock filters buf in place with c.
func (s *DirectForm1) ProcessBlock(c *Coefficients, buf []float64) {
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2
	x1, x2, y1, y2 := s.x1, s.x2, s.y1, s.y2

	for i, x := range buf {
		y := b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2
		x2, x1 = x1, x
		y2, y1 = y1, y
		buf[i] = y
	}

	s.x1, s.x2, s.y1, s.y2 = x1, x2, y1, y2
}

// Reset clears the state to zero.
func (s *DirectForm1) Reset() {
	*s = DirectForm1{}
}

// State returns [x1, x2, y1, y2].
func (s *DirectForm1) State() [4]float64 {
	return [4]float64{s.x1, s.x2, s.y1, s.y2}
}

// ImpulseResponse returns n samples of the impulse response of c, computed on
// a fresh state.
func (c *Coefficients) ImpulseResponse(n int) []float64 {
	if n <= 0 {
		return nil
	}
	var s DirectForm1
	ir := make([]float64, n)
	ir[0] = 1
	s.ProcessBlock(c, ir)
	return ir
}

package biquad

// Coefficients holds the transfer function of one second-order section:
//
//	H(z) = (B0 + B1*z^-1 + B2*z^-2) / (1 + A1*z^-1 + A2*z^-2)
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Feedforward returns [B0, B1, B2].
func (c Coefficients) Feedforward() [3]float64 {
	return [3]float64{c.B0, c.B1, c.B2}
}

// Feedback returns [A1, A2].
func (c Coefficients) Feedback() [2]float64 {
	return [2]float64{c.A1, c.A2}
}

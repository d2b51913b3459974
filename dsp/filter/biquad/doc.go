// Package biquad provides second-order IIR (biquad) section primitives:
// [Coefficients] with their frequency response, and [DirectForm1], the
// per-section filter memory used to run a section sample by sample.
//
// The denominator is normalized so that a0 = 1 and is not stored. The
// numerator is stored as given and need not be normalized.
package biquad

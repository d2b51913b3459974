// Package weighting provides the ITU-R BS.1770 K-weighting filter.
//
// K-weighting is a cascade of two second-order sections:
//
//   - Stage 1, a high-shelf pre-filter (~1682 Hz, +4 dB) modelling the
//     acoustic effect of the head.
//   - Stage 2, the RLB high-pass (~38 Hz) that discounts low frequencies.
//
// [Calibrate] derives both sections for a sample rate with the bilinear
// transform and frequency pre-warping, together with the gain of the cascade
// at the 997 Hz reference tone. The resulting [KCoefficients] value is
// immutable; any number of per-channel [KFilter] instances may share it.
//
// At 48 kHz the derived sections reproduce the coefficient tables published
// in BS.1770, and the calibration constant evaluates to about -0.691 dB.
package weighting

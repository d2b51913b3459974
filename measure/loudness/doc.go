// Package loudness measures integrated loudness per ITU-R BS.1770.
//
// A [Meter] is fed consecutive 100 ms multi-channel blocks. Each block is
// K-weighted per channel, its energy is summed over all channels with equal
// weight, and the last four block energies form the 400 ms momentary window
// (75% overlap). Windows louder than the absolute gate (-70 LUFS) are kept as
// candidates. [Meter.IntegratedLoudness] discards the first three candidates
// (windows that were not yet completely filled), applies the relative gate
// (10 dB below the gated mean) and returns the mean of the survivors in LUFS.
//
// The meter also tracks the sample peak (the largest absolute input sample,
// without oversampling).
//
// Lifecycle:
//
//	invalid --Reset--> ready --ProcessNext100ms--> in_use --IntegratedLoudness--> invalid
//
// A Meter is not safe for concurrent use. Independent meters share no state
// and may run concurrently at different sample rates.
package loudness

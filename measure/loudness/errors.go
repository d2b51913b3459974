package loudness

import "errors"

var (
	// ErrInvalidSampleRate is returned by Reset for sample rates that do not
	// yield at least one sample per 100 ms block.
	ErrInvalidSampleRate = errors.New("loudness: invalid sample rate")

	// ErrInvalidChannels is returned by Reset for channel counts below 1.
	ErrInvalidChannels = errors.New("loudness: invalid channel count")

	// ErrBlockSize is returned when a block does not have exactly
	// floor(sampleRate/10) frames and the configured channel count.
	ErrBlockSize = errors.New("loudness: block size mismatch")

	// ErrInsufficientData is returned when integration is requested before
	// four gated windows were recorded. The session is left intact.
	ErrInsufficientData = errors.New("loudness: insufficient data")

	// ErrNoGatedBlocks is returned when no window survives the relative gate.
	ErrNoGatedBlocks = errors.New("loudness: no windows above the relative gate")
)

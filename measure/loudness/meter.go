package loudness

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-lkfs/dsp/buffer"
	"github.com/cwbudde/algo-lkfs/dsp/core"
	"github.com/cwbudde/algo-lkfs/dsp/filter/weighting"
)

const (
	blockDuration     = 0.1
	momentaryDuration = windowBlocks * blockDuration
)

// State is the lifecycle state of a Meter.
type State int

const (
	// StateInvalid is the initial state and the state after integration.
	StateInvalid State = iota
	// StateReady is the state after Reset, before the first block.
	StateReady
	// StateInUse is the state once at least one block was processed.
	StateInUse
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInvalid:
		return "invalid"
	case StateReady:
		return "ready"
	case StateInUse:
		return "in_use"
	default:
		return "unknown"
	}
}

// Meter implements ITU-R BS.1770 integrated loudness and sample peak
// metering over 100 ms blocks.
type Meter struct {
	logger *slog.Logger
	state  State

	sampleRate float64
	channels   int
	blockSize  int

	// Calibrated for the current session and shared by all filters.
	coeffs       *weighting.KCoefficients
	calibrations int
	gateEnergy   float64

	filters []*weighting.KFilter
	scratch *buffer.Block
	squares []float64

	window     *buffer.Ring[float64]
	candidates []float64
	momentary  float64 // mean square of the latest window
	blocks     int

	peak float64
}

// NewMeter returns a meter in [StateInvalid]. Call Reset before processing.
func NewMeter(opts ...MeterOption) *Meter {
	cfg := ApplyMeterOptions(opts...)

	return &Meter{
		logger:  cfg.Logger,
		scratch: buffer.NewBlock(0, 0),
		window:  buffer.NewRing[float64](windowBlocks),
	}
}

// Reset starts a new session. Filters are reallocated only when the channel
// count changes and coefficients are recalibrated only when the sample rate
// moved by more than [weighting.RecalibrationTolerance]. Window, candidates
// and peak are cleared.
func (m *Meter) Reset(sampleRate float64, channels int) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 1) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	blockSize := int(math.Floor(sampleRate * blockDuration))
	if blockSize < 1 {
		return fmt.Errorf("%w: %v Hz yields empty 100 ms blocks", ErrInvalidSampleRate, sampleRate)
	}
	if channels <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}

	if m.coeffs == nil || m.coeffs.NeedsRecalibration(sampleRate) {
		c := weighting.Calibrate(sampleRate)
		m.coeffs = &c
		m.calibrations++
		m.gateEnergy = absoluteGateEnergy(c.CalibrationDB())

		m.logger.Debug("loudness: calibrated K-weighting",
			slog.Float64("sample_rate", sampleRate),
			slog.Float64("calibration_db", c.CalibrationDB()))
	}

	if len(m.filters) != channels {
		m.filters = make([]*weighting.KFilter, channels)
		for i := range m.filters {
			m.filters[i] = weighting.NewKFilter(m.coeffs)
		}
	} else {
		for _, f := range m.filters {
			f.Reset(m.coeffs)
		}
	}

	m.sampleRate = sampleRate
	m.channels = channels
	m.blockSize = blockSize
	m.scratch.Resize(channels, blockSize)
	if cap(m.squares) >= blockSize {
		m.squares = m.squares[:blockSize]
	} else {
		m.squares = make([]float64, blockSize)
	}

	m.clearSession()
	m.state = StateReady

	return nil
}

func (m *Meter) clearSession() {
	m.window.Reset()
	m.candidates = m.candidates[:0]
	m.momentary = 0
	m.blocks = 0
	m.peak = 0
}

// ProcessNext100ms feeds one block of exactly BlockSize frames per channel.
// The block is not modified.
//
// Before Reset (or after an integration) the block is ignored: the call
// returns false and a nil error and logs a warning. A block of the wrong
// shape returns [ErrBlockSize] and leaves the meter unchanged.
func (m *Meter) ProcessNext100ms(block *buffer.Block) (bool, error) {
	if m.state == StateInvalid {
		m.logger.Warn("loudness: block ignored, meter needs Reset before use")
		return false, nil
	}

	if block == nil {
		return false, fmt.Errorf("%w: nil block", ErrBlockSize)
	}
	if block.Frames() != m.blockSize {
		return false, fmt.Errorf("%w: got %d frames, want %d", ErrBlockSize, block.Frames(), m.blockSize)
	}
	if block.Channels() != m.channels {
		return false, fmt.Errorf("%w: got %d channels, want %d", ErrBlockSize, block.Channels(), m.channels)
	}

	m.peak = math.Max(m.peak, block.MaxAbs())

	m.scratch.CopyFrom(block)
	energy := 0.0
	for c, f := range m.filters {
		samples := m.scratch.Channel(c)
		f.ProcessBlock(samples)

		vecmath.MulBlock(m.squares, samples, samples)
		for _, sq := range m.squares {
			energy += sq
		}
	}

	m.window.Push(energy)
	m.momentary = m.window.Sum() / (m.sampleRate * momentaryDuration)
	if m.momentary > m.gateEnergy {
		m.candidates = append(m.candidates, m.momentary)
	}

	m.blocks++
	m.state = StateInUse

	return true, nil
}

// Integrate runs the two-pass gating over the session and returns the full
// gating result. On success, or when no window survives the relative gate,
// the session is consumed (window, candidates and momentary loudness are
// cleared) and the meter returns to [StateInvalid]. With
// fewer than four gated windows it returns [ErrInsufficientData] and the
// session continues.
func (m *Meter) Integrate() (Gating, error) {
	if m.state != StateInUse {
		return Gating{}, fmt.Errorf("%w: meter is %s", ErrInsufficientData, m.state)
	}

	g, err := IntegrateGated(m.candidates, m.coeffs.CalibrationDB())
	if errors.Is(err, ErrInsufficientData) {
		return Gating{}, err
	}

	m.logger.Debug("loudness: integrated",
		slog.Int("blocks", m.blocks),
		slog.Int("candidates", g.Candidates),
		slog.Int("survivors", g.Survivors),
		slog.Float64("relative_gate_lufs", g.RelativeGate),
		slog.Float64("integrated_lufs", g.Integrated))

	m.candidates = m.candidates[:0]
	m.window.Reset()
	m.momentary = 0
	m.state = StateInvalid

	return g, err
}

// IntegratedLoudness returns the gated loudness of the session in LUFS.
// See [Meter.Integrate] for the state handling.
func (m *Meter) IntegratedLoudness() (float64, error) {
	g, err := m.Integrate()
	if err != nil {
		return 0, err
	}
	return g.Integrated, nil
}

// Momentary returns the loudness of the latest 400 ms window in LUFS, or
// -Inf when no block has been processed since Reset or the session was
// consumed by an integration.
func (m *Meter) Momentary() float64 {
	if m.coeffs == nil {
		return math.Inf(-1)
	}
	return toLUFS(m.momentary, m.coeffs.CalibrationDB())
}

// SamplePeak returns the largest absolute input sample since Reset. It is
// valid in every state.
func (m *Meter) SamplePeak() float64 {
	return m.peak
}

// SamplePeakDB returns SamplePeak in dBFS.
func (m *Meter) SamplePeakDB() float64 {
	return core.LinearToDB(m.peak)
}

// State returns the lifecycle state.
func (m *Meter) State() State {
	return m.state
}

// SampleRate returns the sample rate of the last successful Reset.
func (m *Meter) SampleRate() float64 {
	return m.sampleRate
}

// Channels returns the channel count of the last successful Reset.
func (m *Meter) Channels() int {
	return m.channels
}

// BlockSize returns the expected frames per block, floor(sampleRate/10).
func (m *Meter) BlockSize() int {
	return m.blockSize
}

// Blocks returns the number of blocks processed in the current session.
func (m *Meter) Blocks() int {
	return m.blocks
}

// Candidates returns the number of windows that passed the absolute gate in
// the current session.
func (m *Meter) Candidates() int {
	return len(m.candidates)
}

// Coefficients returns a copy of the session's K-weighting coefficients. The
// zero value is returned before the first Reset.
func (m *Meter) Coefficients() weighting.KCoefficients {
	if m.coeffs == nil {
		return weighting.KCoefficients{}
	}
	return *m.coeffs
}

// Calibrations returns how many times coefficients were derived.
func (m *Meter) Calibrations() int {
	return m.calibrations
}

package loudness

import (
	"context"
	"fmt"
	"time"

	"github.com/cwbudde/algo-lkfs/dsp/buffer"
)

// BlockSource supplies consecutive 100 ms blocks in chronological order.
// SampleRate and Channels must be valid before the first ReadBlock.
type BlockSource interface {
	SampleRate() float64
	Channels() int
	// ReadBlock fills dst, already shaped to Channels x floor(SampleRate/10),
	// and reports false once the source is exhausted.
	ReadBlock(dst *buffer.Block) (bool, error)
}

// Result is the outcome of measuring one source.
type Result struct {
	Integrated   float64 // LUFS
	SamplePeak   float64 // linear
	SamplePeakDB float64 // dBFS
	Blocks       int
	Duration     time.Duration
	Gating       Gating
}

// Measure reads src to exhaustion through a fresh meter and integrates it.
// ctx is checked between blocks.
func Measure(ctx context.Context, src BlockSource, opts ...MeterOption) (Result, error) {
	return MeasureWith(ctx, NewMeter(opts...), src)
}

// MeasureWith is Measure with a caller-owned meter, which is Reset from the
// source format first. Reusing one meter per worker avoids reallocating
// filters when consecutive sources share a format.
func MeasureWith(ctx context.Context, m *Meter, src BlockSource) (Result, error) {
	if err := m.Reset(src.SampleRate(), src.Channels()); err != nil {
		return Result{}, err
	}

	block := buffer.NewBlock(m.Channels(), m.BlockSize())
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		ok, err := src.ReadBlock(block)
		if err != nil {
			return Result{}, fmt.Errorf("loudness: read block %d: %w", m.Blocks(), err)
		}
		if !ok {
			break
		}

		if _, err := m.ProcessNext100ms(block); err != nil {
			return Result{}, err
		}
	}

	res := Result{
		SamplePeak:   m.SamplePeak(),
		SamplePeakDB: m.SamplePeakDB(),
		Blocks:       m.Blocks(),
		Duration:     time.Duration(float64(m.Blocks()*m.BlockSize()) / m.SampleRate() * float64(time.Second)),
	}

	g, err := m.Integrate()
	if err != nil {
		return res, err
	}
	res.Gating = g
	res.Integrated = g.Integrated

	return res, nil
}

// GainToTarget returns the gain in dB that would bring a program measured at
// integrated LUFS to target LUFS.
func GainToTarget(integrated, target float64) float64 {
	return target - integrated
}

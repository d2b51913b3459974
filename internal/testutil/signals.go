// Package testutil provides deterministic signal generators and comparison
// helpers for the meter and filter tests.
package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-lkfs/dsp/buffer"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Concat joins signal segments end to end.
func Concat(parts ...[]float64) []float64 {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]float64, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// ToneAmplitude returns the peak amplitude a sine needs, when fed identically
// to each of channels channels, to read lufs on a K-weighted meter at the
// 997 Hz reference frequency: sum over channels of A^2/2 = 10^(lufs/10).
func ToneAmplitude(lufs float64, channels int) float64 {
	return math.Sqrt(2 * math.Pow(10, lufs/10) / float64(channels))
}

// BlockFrames returns the number of frames in a 100 ms block.
func BlockFrames(sampleRate float64) int {
	return int(math.Floor(sampleRate / 10))
}

// SplitBlocks cuts equally long channel signals into consecutive 100 ms
// blocks. A trailing partial block is dropped.
func SplitBlocks(sampleRate float64, channels ...[]float64) []*buffer.Block {
	if len(channels) == 0 {
		return nil
	}

	frames := BlockFrames(sampleRate)
	count := len(channels[0]) / frames
	blocks := make([]*buffer.Block, count)
	for b := range blocks {
		block := buffer.NewBlock(len(channels), frames)
		for c, ch := range channels {
			copy(block.Channel(c), ch[b*frames:(b+1)*frames])
		}
		blocks[b] = block
	}
	return blocks
}

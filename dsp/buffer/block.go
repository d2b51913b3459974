package buffer

import (
	"fmt"
	"math"
)

// Block is a channel-major multi-channel sample block: Channel(c) is a
// contiguous slice of Frames() samples for channel c. All channels share one
// backing array.
type Block struct {
	data     []float64
	channels int
	frames   int
}

// NewBlock returns a zero-filled Block. Negative dimensions are treated as 0.
func NewBlock(channels, frames int) *Block {
	b := &Block{}
	b.Resize(channels, frames)
	return b
}

// BlockFromChannels copies the given per-channel slices into a new Block.
// All slices must have the same length.
func BlockFromChannels(channels ...[]float64) (*Block, error) {
	frames := 0
	if len(channels) > 0 {
		frames = len(channels[0])
	}
	for c, ch := range channels {
		if len(ch) != frames {
			return nil, fmt.Errorf("buffer: channel %d has %d frames, want %d", c, len(ch), frames)
		}
	}

	b := NewBlock(len(channels), frames)
	for c, ch := range channels {
		copy(b.Channel(c), ch)
	}
	return b, nil
}

// Channels returns the channel count.
func (b *Block) Channels() int {
	return b.channels
}

// Frames returns the number of samples per channel.
func (b *Block) Frames() int {
	return b.frames
}

// Channel returns the samples of channel c. The slice aliases the Block.
// Panics if c is out of range.
func (b *Block) Channel(c int) []float64 {
	if c < 0 || c >= b.channels {
		panic(fmt.Sprintf("buffer: channel %d out of range [0,%d)", c, b.channels))
	}
	return b.data[c*b.frames : (c+1)*b.frames : (c+1)*b.frames]
}

// Resize sets the shape, reusing the backing array when it is large enough.
// Contents are zeroed whenever the shape changes.
func (b *Block) Resize(channels, frames int) {
	channels = max(channels, 0)
	frames = max(frames, 0)
	if channels == b.channels && frames == b.frames {
		return
	}

	n := channels * frames
	if cap(b.data) >= n {
		b.data = b.data[:n]
		clear(b.data)
	} else {
		b.data = make([]float64, n)
	}
	b.channels = channels
	b.frames = frames
}

// CopyFrom resizes b to the shape of src and copies its samples.
func (b *Block) CopyFrom(src *Block) {
	b.Resize(src.channels, src.frames)
	copy(b.data, src.data)
}

// Zero sets all samples to 0.
func (b *Block) Zero() {
	clear(b.data)
}

// MaxAbs returns the largest absolute sample value across all channels,
// or 0 for an empty block.
func (b *Block) MaxAbs() float64 {
	peak := 0.0
	for _, v := range b.data {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}

// Package wavio reads PCM WAV files as a sequence of 100 ms blocks for the
// loudness meter.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/cwbudde/algo-vecmath"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-lkfs/dsp/buffer"
)

// ErrInvalidFile is returned for input that is not a readable PCM WAV file.
var ErrInvalidFile = errors.New("wavio: invalid wav file")

// Reader serves a decoded WAV file as consecutive blocks of
// floor(SampleRate/10) frames. It satisfies loudness.BlockSource.
type Reader struct {
	closer io.Closer

	sampleRate float64
	channels   int
	bitDepth   int
	frames     int

	// Interleaved, normalized to [-1, 1).
	samples []float64
	pos     int
}

// Open decodes the WAV file at path. The file is closed by Close.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.closer = f

	return r, nil
}

// NewReader decodes a complete WAV stream from rs. Only integer PCM is
// accepted, either as a plain or as an extensible format tag.
func NewReader(rs io.ReadSeeker) (*Reader, error) {
	format, err := audioFormat(rs)
	if err != nil {
		return nil, err
	}
	if format != formatPCM {
		return nil, fmt.Errorf("%w: unsupported audio format %#04x", ErrInvalidFile, format)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrInvalidFile
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wavio: decode pcm: %w", err)
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	if channels < 1 || bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d channels, %d bit", ErrInvalidFile, channels, bitDepth)
	}

	samples := make([]float64, len(pcm.Data))
	offset := 0.0
	if bitDepth == 8 {
		// 8-bit WAV is unsigned.
		offset = -128
	}
	for i, v := range pcm.Data {
		samples[i] = float64(v) + offset
	}
	vecmath.ScaleBlock(samples, samples, 1/math.Ldexp(1, bitDepth-1))

	return &Reader{
		sampleRate: float64(dec.SampleRate),
		channels:   channels,
		bitDepth:   bitDepth,
		frames:     len(samples) / channels,
		samples:    samples,
	}, nil
}

// SampleRate returns the file's sample rate in Hz.
func (r *Reader) SampleRate() float64 { return r.sampleRate }

// Channels returns the file's channel count.
func (r *Reader) Channels() int { return r.channels }

// BitDepth returns the PCM sample width.
func (r *Reader) BitDepth() int { return r.bitDepth }

// Frames returns the total number of frames in the file.
func (r *Reader) Frames() int { return r.frames }

// Duration returns the length of the file.
func (r *Reader) Duration() time.Duration {
	if r.sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(r.frames) / r.sampleRate * float64(time.Second))
}

// ReadBlock de-interleaves the next dst.Frames() frames into dst. It returns
// false once fewer frames than that remain; the partial tail is never
// delivered.
func (r *Reader) ReadBlock(dst *buffer.Block) (bool, error) {
	if dst.Channels() != r.channels {
		return false, fmt.Errorf("wavio: block has %d channels, file has %d", dst.Channels(), r.channels)
	}

	n := dst.Frames()
	if n == 0 || r.pos+n > r.frames {
		return false, nil
	}

	base := r.pos * r.channels
	for c := range r.channels {
		ch := dst.Channel(c)
		for i := range ch {
			ch[i] = r.samples[base+i*r.channels+c]
		}
	}
	r.pos += n

	return true, nil
}

// Rewind restarts reading at the first frame.
func (r *Reader) Rewind() {
	r.pos = 0
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

package loudness

import (
	"bytes"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-lkfs/dsp/buffer"
	"github.com/cwbudde/algo-lkfs/dsp/filter/weighting"
	"github.com/cwbudde/algo-lkfs/internal/testutil"
)

// feed pushes every block through m and fails the test on an error or an
// ignored block.
func feed(t *testing.T, m *Meter, blocks []*buffer.Block) {
	t.Helper()
	for i, b := range blocks {
		ok, err := m.ProcessNext100ms(b)
		require.NoErrorf(t, err, "block %d", i)
		require.Truef(t, ok, "block %d ignored", i)
	}
}

// toneBlocks returns identical reference tones on every channel, cut into
// 100 ms blocks.
func toneBlocks(fs float64, channels int, lufs, seconds float64) []*buffer.Block {
	sig := testutil.DeterministicSine(weighting.ReferenceFrequency, fs,
		testutil.ToneAmplitude(lufs, channels), int(fs*seconds))
	chans := make([][]float64, channels)
	for c := range chans {
		chans[c] = sig
	}
	return testutil.SplitBlocks(fs, chans...)
}

func newTestMeter(t *testing.T, fs float64, channels int) *Meter {
	t.Helper()
	m := NewMeter()
	require.NoError(t, m.Reset(fs, channels))
	return m
}

func TestMeter_NewIsInvalid(t *testing.T) {
	m := NewMeter()

	assert.Equal(t, StateInvalid, m.State())
	assert.True(t, math.IsInf(m.Momentary(), -1))
	assert.Zero(t, m.SamplePeak())
	assert.Equal(t, weighting.KCoefficients{}, m.Coefficients())
	assert.Zero(t, m.Calibrations())
}

func TestMeter_ResetValidation(t *testing.T) {
	tests := []struct {
		name     string
		fs       float64
		channels int
		want     error
	}{
		{"zero rate", 0, 2, ErrInvalidSampleRate},
		{"negative rate", -48000, 2, ErrInvalidSampleRate},
		{"NaN rate", math.NaN(), 2, ErrInvalidSampleRate},
		{"infinite rate", math.Inf(1), 2, ErrInvalidSampleRate},
		{"empty block", 5, 1, ErrInvalidSampleRate},
		{"zero channels", 48000, 0, ErrInvalidChannels},
		{"negative channels", 48000, -2, ErrInvalidChannels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMeter()
			err := m.Reset(tt.fs, tt.channels)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, StateInvalid, m.State())
		})
	}
}

func TestMeter_ResetSetsFormat(t *testing.T) {
	tests := []struct {
		fs        float64
		blockSize int
	}{
		{10, 1},
		{8000, 800},
		{44100, 4410},
		{48000, 4800},
		{22050.5, 2205},
		{96000, 9600},
	}

	for _, tt := range tests {
		m := newTestMeter(t, tt.fs, 3)
		assert.Equal(t, StateReady, m.State())
		assert.Equal(t, tt.blockSize, m.BlockSize(), "fs=%v", tt.fs)
		assert.Equal(t, tt.fs, m.SampleRate())
		assert.Equal(t, 3, m.Channels())
	}
}

func TestMeter_ProcessBeforeResetIsIgnored(t *testing.T) {
	var logs bytes.Buffer
	m := NewMeter(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	ok, err := m.ProcessNext100ms(buffer.NewBlock(2, 4800))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, m.Blocks())
	assert.Equal(t, StateInvalid, m.State())
	assert.Contains(t, logs.String(), "Reset")
}

func TestMeter_ProcessRejectsWrongShape(t *testing.T) {
	m := newTestMeter(t, 48000, 2)

	for name, b := range map[string]*buffer.Block{
		"nil":            nil,
		"short":          buffer.NewBlock(2, 4799),
		"long":           buffer.NewBlock(2, 4801),
		"too few chans":  buffer.NewBlock(1, 4800),
		"too many chans": buffer.NewBlock(3, 4800),
	} {
		ok, err := m.ProcessNext100ms(b)
		require.ErrorIs(t, err, ErrBlockSize, name)
		assert.False(t, ok, name)
	}

	assert.Zero(t, m.Blocks())
	assert.Equal(t, StateReady, m.State())
}

func TestMeter_StateTransitions(t *testing.T) {
	m := newTestMeter(t, 48000, 2)
	blocks := toneBlocks(48000, 2, -20, 1)

	feed(t, m, blocks[:1])
	assert.Equal(t, StateInUse, m.State())

	feed(t, m, blocks[1:])
	_, err := m.IntegratedLoudness()
	require.NoError(t, err)
	assert.Equal(t, StateInvalid, m.State())
	assert.Zero(t, m.Candidates())

	ok, err := m.ProcessNext100ms(blocks[0])
	require.NoError(t, err)
	assert.False(t, ok, "block accepted after integration")

	require.NoError(t, m.Reset(48000, 2))
	assert.Equal(t, StateReady, m.State())
}

func TestMeter_InsufficientDataKeepsSession(t *testing.T) {
	m := newTestMeter(t, 48000, 2)

	_, err := m.IntegratedLoudness()
	require.ErrorIs(t, err, ErrInsufficientData)
	assert.Equal(t, StateReady, m.State())

	blocks := toneBlocks(48000, 2, -20, 3)
	feed(t, m, blocks[:3])
	require.Equal(t, 3, m.Candidates())

	_, err = m.IntegratedLoudness()
	require.ErrorIs(t, err, ErrInsufficientData)
	assert.Equal(t, StateInUse, m.State())
	assert.Equal(t, 3, m.Candidates())

	feed(t, m, blocks[3:])
	got, err := m.IntegratedLoudness()
	require.NoError(t, err)
	assert.InDelta(t, -20, got, 0.05)
}

func TestMeter_SilenceHasNoCandidates(t *testing.T) {
	m := newTestMeter(t, 48000, 2)
	feed(t, m, testutil.SplitBlocks(48000, make([]float64, 48000), make([]float64, 48000)))

	assert.Equal(t, 10, m.Blocks())
	assert.Zero(t, m.Candidates())
	assert.True(t, math.IsInf(m.Momentary(), -1))

	_, err := m.IntegratedLoudness()
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestMeter_ReferenceTone(t *testing.T) {
	tests := []struct {
		name      string
		fs        float64
		channels  int
		amplitude float64
		want      float64
	}{
		{"full scale mono", 48000, 1, 1, -3.0103},
		{"full scale stereo", 48000, 2, 1, 0},
		{"sqrt2 mono", 48000, 1, math.Sqrt2, 0},
		{"-20 dBFS stereo", 48000, 2, 0.1, -20},
		{"44.1 kHz", 44100, 1, testutil.ToneAmplitude(-23, 1), -23},
		{"32 kHz three channels", 32000, 3, testutil.ToneAmplitude(-23, 3), -23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := testutil.DeterministicSine(weighting.ReferenceFrequency, tt.fs, tt.amplitude, int(tt.fs*5))
			chans := make([][]float64, tt.channels)
			for c := range chans {
				chans[c] = sig
			}

			m := newTestMeter(t, tt.fs, tt.channels)
			feed(t, m, testutil.SplitBlocks(tt.fs, chans...))

			g, err := m.Integrate()
			require.NoError(t, err)
			assert.InDelta(t, tt.want, g.Integrated, 0.01)
			assert.InDelta(t, tt.want-10, g.RelativeGate, 0.01)
			assert.Equal(t, 47, g.Candidates)
			assert.Equal(t, g.Candidates, g.Survivors)
		})
	}
}

func TestMeter_Momentary(t *testing.T) {
	m := newTestMeter(t, 48000, 2)
	blocks := toneBlocks(48000, 2, -20, 1)

	feed(t, m, blocks[:1])
	// One block of energy spread over a 400 ms window.
	assert.InDelta(t, -20+10*math.Log10(0.25), m.Momentary(), 0.05)

	feed(t, m, blocks[1:4])
	assert.InDelta(t, -20, m.Momentary(), 0.01)

	feed(t, m, blocks[4:])
	assert.InDelta(t, -20, m.Momentary(), 0.01)

	_, err := m.IntegratedLoudness()
	require.NoError(t, err)
	assert.True(t, math.IsInf(m.Momentary(), -1), "integration must clear the window")
}

func TestMeter_SamplePeak(t *testing.T) {
	m := newTestMeter(t, 48000, 2)

	left := make([]float64, 9600)
	right := make([]float64, 9600)
	left[100] = 0.75
	right[7000] = -0.9
	feed(t, m, testutil.SplitBlocks(48000, left, right))

	assert.InDelta(t, 0.9, m.SamplePeak(), 1e-15)
	assert.InDelta(t, 20*math.Log10(0.9), m.SamplePeakDB(), 1e-12)

	// Still valid once the session is consumed.
	_, _ = m.Integrate()
	assert.InDelta(t, 0.9, m.SamplePeak(), 1e-15)

	require.NoError(t, m.Reset(48000, 2))
	assert.Zero(t, m.SamplePeak())
	assert.True(t, math.IsInf(m.SamplePeakDB(), -1))
}

func TestMeter_DoesNotModifyInput(t *testing.T) {
	m := newTestMeter(t, 48000, 1)
	noise := testutil.DeterministicNoise(1, 0.5, 4800)
	block, err := buffer.BlockFromChannels(noise)
	require.NoError(t, err)

	want := append([]float64(nil), block.Channel(0)...)
	feed(t, m, []*buffer.Block{block})

	assert.Equal(t, want, block.Channel(0))
}

func TestMeter_Recalibration(t *testing.T) {
	m := newTestMeter(t, 48000, 2)
	require.Equal(t, 1, m.Calibrations())
	first := m.Coefficients()

	require.NoError(t, m.Reset(48000, 2))
	require.NoError(t, m.Reset(48000.5, 1))
	assert.Equal(t, 1, m.Calibrations(), "sub-hertz rate changes must not recalibrate")
	assert.Equal(t, first, m.Coefficients())
	assert.Equal(t, 48000.5, m.SampleRate())

	require.NoError(t, m.Reset(44100, 2))
	assert.Equal(t, 2, m.Calibrations())
	assert.Equal(t, 4410, m.BlockSize())
	assert.Equal(t, weighting.Calibrate(44100), m.Coefficients())
}

func TestMeter_ResetClearsSession(t *testing.T) {
	loud := toneBlocks(48000, 2, -10, 2)
	program := toneBlocks(48000, 2, -30, 3)

	fresh := newTestMeter(t, 48000, 2)
	feed(t, fresh, program)
	want, err := fresh.IntegratedLoudness()
	require.NoError(t, err)

	m := newTestMeter(t, 48000, 2)
	feed(t, m, loud)
	require.NoError(t, m.Reset(48000, 2))
	assert.Zero(t, m.Blocks())
	assert.Zero(t, m.Candidates())
	assert.True(t, math.IsInf(m.Momentary(), -1))

	feed(t, m, program)
	got, err := m.IntegratedLoudness()
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)
}

func TestMeter_AbsoluteGateIgnoresQuietWindows(t *testing.T) {
	quiet := newTestMeter(t, 48000, 1)
	feed(t, quiet, toneBlocks(48000, 1, -75, 5))
	assert.Zero(t, quiet.Candidates())

	measure := func(tail []*buffer.Block) float64 {
		m := newTestMeter(t, 48000, 1)
		feed(t, m, toneBlocks(48000, 1, -20, 10))
		feed(t, m, tail)
		got, err := m.IntegratedLoudness()
		require.NoError(t, err)
		return got
	}

	// Windows fully below -70 LUFS contribute nothing, however long.
	a := measure(toneBlocks(48000, 1, -80, 5))
	b := measure(toneBlocks(48000, 1, -75, 20))
	assert.InDelta(t, a, b, 1e-4)
}

func TestMeter_ConcurrentMetersAreIndependent(t *testing.T) {
	type job struct {
		fs       float64
		channels int
		lufs     float64
	}
	jobs := []job{
		{48000, 2, -23},
		{44100, 1, -18},
		{32000, 3, -30},
		{96000, 2, -14},
	}

	want := make([]float64, len(jobs))
	for i, j := range jobs {
		m := newTestMeter(t, j.fs, j.channels)
		feed(t, m, toneBlocks(j.fs, j.channels, j.lufs, 2))
		v, err := m.IntegratedLoudness()
		require.NoError(t, err)
		want[i] = v
	}

	got := make([]float64, len(jobs))
	errs := make([]error, len(jobs))
	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m := NewMeter()
			if errs[i] = m.Reset(j.fs, j.channels); errs[i] != nil {
				return
			}
			for _, b := range toneBlocks(j.fs, j.channels, j.lufs, 2) {
				if _, errs[i] = m.ProcessNext100ms(b); errs[i] != nil {
					return
				}
			}
			got[i], errs[i] = m.IntegratedLoudness()
		}()
	}
	wg.Wait()

	for i := range jobs {
		require.NoError(t, errs[i])
		assert.InDelta(t, want[i], got[i], 1e-12)
		assert.InDelta(t, jobs[i].lufs, got[i], 0.05)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "invalid", StateInvalid.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "in_use", StateInUse.String())
	assert.Equal(t, "unknown", State(42).String())
}

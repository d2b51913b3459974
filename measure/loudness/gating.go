package loudness

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-lkfs/dsp/core"
)

const (
	// AbsoluteGate is the fixed gating threshold in LUFS.
	AbsoluteGate = -70.0

	// RelativeGateOffset is the distance of the relative gate below the
	// absolute-gated mean, in dB.
	RelativeGateOffset = -10.0

	// windowBlocks is the number of 100 ms blocks in a 400 ms window.
	windowBlocks = 4

	// warmupCandidates is the number of leading candidates that stem from
	// windows which were not yet completely filled.
	warmupCandidates = windowBlocks - 1
)

// Gating describes one integration.
type Gating struct {
	// Integrated is the gated loudness in LUFS.
	Integrated float64
	// RelativeGate is the relative threshold in LUFS.
	RelativeGate float64
	// Candidates is the number of windows considered after warm-up discard.
	Candidates int
	// Survivors is the number of windows above the relative gate.
	Survivors int
}

// IntegrateGated computes integrated loudness from absolute-gated window
// mean squares in recording order. calibrationDB is added to every
// 10*log10(mean square) conversion.
//
// The first three candidates are discarded. The remaining mean, in LUFS and
// floored at [AbsoluteGate], minus 10 dB is the relative gate; candidates
// strictly above it are averaged in the linear domain.
func IntegrateGated(candidates []float64, calibrationDB float64) (Gating, error) {
	if len(candidates) <= warmupCandidates {
		return Gating{}, fmt.Errorf("%w: %d gated windows, need at least %d",
			ErrInsufficientData, len(candidates), warmupCandidates+1)
	}

	kept := candidates[warmupCandidates:]
	g := Gating{Candidates: len(kept)}

	sum := 0.0
	for _, ms := range kept {
		sum += ms
	}
	meanLUFS := toLUFS(sum/float64(len(kept)), calibrationDB)
	g.RelativeGate = math.Max(meanLUFS, AbsoluteGate) + RelativeGateOffset

	gatedSum := 0.0
	for _, ms := range kept {
		if toLUFS(ms, calibrationDB) > g.RelativeGate {
			gatedSum += ms
			g.Survivors++
		}
	}
	if g.Survivors == 0 {
		return g, fmt.Errorf("%w: relative gate %.2f LUFS", ErrNoGatedBlocks, g.RelativeGate)
	}

	g.Integrated = toLUFS(gatedSum/float64(g.Survivors), calibrationDB)

	return g, nil
}

func toLUFS(meanSquare, calibrationDB float64) float64 {
	return core.LinearPowerToDB(meanSquare) + calibrationDB
}

// absoluteGateEnergy returns the mean square above which a window passes the
// absolute gate.
func absoluteGateEnergy(calibrationDB float64) float64 {
	return core.DBPowerToLinear(AbsoluteGate - calibrationDB)
}

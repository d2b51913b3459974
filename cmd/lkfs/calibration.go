package main

import (
	"fmt"

	"github.com/cwbudde/algo-lkfs/dsp/filter/weighting"
)

// CalibrationCmd prints the K-weighting coefficients for one sample rate.
type CalibrationCmd struct {
	Rate float64 `default:"48000" help:"Sample rate in Hz."`
}

func (c *CalibrationCmd) Run(g *globals) error {
	if !(c.Rate > 0) {
		return fmt.Errorf("invalid sample rate %v", c.Rate)
	}

	k := weighting.Calibrate(c.Rate)
	g.logger.Debug("calibrated", "sample_rate", c.Rate)

	_, err := fmt.Fprintf(g.out,
		"sample rate:  %g Hz\n"+
			"shelf:        b0=%.16g b1=%.16g b2=%.16g a1=%.16g a2=%.16g\n"+
			"high-pass:    b0=%.16g b1=%.16g b2=%.16g a1=%.16g a2=%.16g\n"+
			"attenuation:  %.16g at %g Hz\n"+
			"calibration:  %.4f dB\n",
		k.SampleRate,
		k.Shelf.B0, k.Shelf.B1, k.Shelf.B2, k.Shelf.A1, k.Shelf.A2,
		k.HighPass.B0, k.HighPass.B1, k.HighPass.B2, k.HighPass.A1, k.HighPass.A2,
		k.Attenuation, weighting.ReferenceFrequency,
		k.CalibrationDB(),
	)
	return err
}

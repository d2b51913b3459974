package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-lkfs/dsp/filter/weighting"
)

// responseFrequencies are the table rows, in Hz.
var responseFrequencies = []float64{
	20, 25, 31.5, 40, 50, 63, 80, 100, 200, 500,
	weighting.ReferenceFrequency, 1000, 2000, 4000, 5000, 8000, 10000, 16000, 20000,
}

// ResponseCmd prints the K-weighting magnitude response.
type ResponseCmd struct {
	Rate float64 `default:"48000" help:"Sample rate in Hz."`
	Size int     `default:"8192" help:"FFT size for the measured column (power of two)."`
}

// Run compares the analytic cascade response with the FFT of the impulse
// response at each table frequency below Nyquist.
func (c *ResponseCmd) Run(g *globals) error {
	if !(c.Rate > 0) {
		return fmt.Errorf("invalid sample rate %v", c.Rate)
	}

	coeffs := weighting.Calibrate(c.Rate)
	measured, err := weighting.MeasureResponse(coeffs, c.Size)
	if err != nil {
		return err
	}

	return printResponse(g.out, &coeffs, measured)
}

func printResponse(w io.Writer, coeffs *weighting.KCoefficients, measured weighting.MeasuredResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Freq [Hz]\tAnalytic [dB]\tBin [Hz]\tMeasured [dB]\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "---------\t-------------\t--------\t-------------\n"); err != nil {
		return err
	}

	nyquist := coeffs.SampleRate / 2
	for _, f := range responseFrequencies {
		if f >= nyquist {
			break
		}
		bin := measured.Bin(f)
		if _, err := fmt.Fprintf(tw, "%g\t%.4f\t%.1f\t%.4f\n",
			f,
			coeffs.MagnitudeDB(f),
			measured.Frequency(bin),
			measured.MagnitudeDB[bin],
		); err != nil {
			return err
		}
	}

	return tw.Flush()
}

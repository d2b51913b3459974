package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-lkfs/internal/wavio"
	"github.com/cwbudde/algo-lkfs/measure/loudness"
)

// MeasureCmd measures a list of WAV files.
type MeasureCmd struct {
	Target float64  `env:"LKFS_TARGET" default:"-23" help:"Target loudness in LUFS for the gain column."`
	JSON   bool     `name:"json" help:"Emit JSON instead of a table."`
	Jobs   int      `short:"j" default:"0" help:"Files measured in parallel (0 uses GOMAXPROCS)."`
	Files  []string `arg:"" name:"files" type:"existingfile" help:"WAV files to measure."`
}

type fileReport struct {
	File         string   `json:"file"`
	SampleRate   float64  `json:"sample_rate"`
	Channels     int      `json:"channels"`
	Duration     float64  `json:"duration_s"`
	Integrated   float64  `json:"integrated_lufs"`
	RelativeGate float64  `json:"relative_gate_lufs"`
	SamplePeakDB *float64 `json:"sample_peak_dbfs,omitempty"` // nil for digital silence
	Gain         float64  `json:"gain_db"`
	Error        string   `json:"error,omitempty"`
}

// Run measures all files, one meter per worker, and prints the reports in
// argument order.
func (c *MeasureCmd) Run(g *globals) error {
	reports, err := c.measureAll(context.Background(), g.logger)

	if c.JSON {
		enc := json.NewEncoder(g.out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(reports); encErr != nil {
			return encErr
		}
	} else if printErr := printReports(g.out, reports, c.Target); printErr != nil {
		return printErr
	}

	return err
}

func (c *MeasureCmd) measureAll(ctx context.Context, logger *slog.Logger) ([]fileReport, error) {
	workers := c.Jobs
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(c.Files))

	reports := make([]fileReport, len(c.Files))
	errs := make([]error, len(c.Files))
	jobs := make(chan int)

	var group errgroup.Group
	for range workers {
		group.Go(func() error {
			m := loudness.NewMeter(loudness.WithLogger(logger))
			for i := range jobs {
				reports[i], errs[i] = c.measureFile(ctx, m, c.Files[i])
				if errs[i] != nil {
					logger.Error("measure failed", slog.String("file", c.Files[i]), slog.Any("error", errs[i]))
				}
			}
			return nil
		})
	}

	for i := range c.Files {
		jobs <- i
	}
	close(jobs)
	_ = group.Wait()

	return reports, errors.Join(errs...)
}

func (c *MeasureCmd) measureFile(ctx context.Context, m *loudness.Meter, path string) (fileReport, error) {
	rep := fileReport{File: path}

	r, err := wavio.Open(path)
	if err != nil {
		rep.Error = err.Error()
		return rep, err
	}
	defer r.Close()

	rep.SampleRate = r.SampleRate()
	rep.Channels = r.Channels()

	res, err := loudness.MeasureWith(ctx, m, r)
	rep.Duration = res.Duration.Seconds()
	if peak := res.SamplePeakDB; !math.IsInf(peak, -1) {
		rep.SamplePeakDB = &peak
	}
	if err != nil {
		err = fmt.Errorf("%s: %w", path, err)
		rep.Error = err.Error()
		return rep, err
	}

	rep.Integrated = res.Integrated
	rep.RelativeGate = res.Gating.RelativeGate
	rep.Gain = loudness.GainToTarget(res.Integrated, c.Target)

	return rep, nil
}

func printReports(w io.Writer, reports []fileReport, target float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "File\tRate\tCh\tDuration [s]\tIntegrated [LUFS]\tPeak [dBFS]\tGain to %.1f [dB]\n", target); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "----\t----\t--\t------------\t-----------------\t-----------\t--------------\n"); err != nil {
		return err
	}

	for _, r := range reports {
		var err error
		if r.Error != "" {
			_, err = fmt.Fprintf(tw, "%s\t%g\t%d\t%.1f\terror: %s\t\t\n",
				r.File, r.SampleRate, r.Channels, r.Duration, r.Error)
		} else {
			_, err = fmt.Fprintf(tw, "%s\t%g\t%d\t%.1f\t%.2f\t%s\t%+.2f\n",
				r.File, r.SampleRate, r.Channels, r.Duration, r.Integrated, formatPeak(r.SamplePeakDB), r.Gain)
		}
		if err != nil {
			return err
		}
	}

	return tw.Flush()
}

func formatPeak(db *float64) string {
	if db == nil {
		return "-inf"
	}
	return fmt.Sprintf("%.2f", *db)
}

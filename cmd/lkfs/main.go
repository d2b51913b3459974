// Command lkfs measures ITU-R BS.1770 integrated loudness of WAV files and
// reports properties of the K-weighting filter.
//
// Usage:
//
//	lkfs measure [--target=-23] [--json] [-j N] FILE...
//	lkfs response [--rate=48000] [--size=8192]
//	lkfs calibration [--rate=48000]
//
// Defaults for --target and --log-level are read from LKFS_TARGET and
// LKFS_LOG_LEVEL, which may also be set in a .env file in the working
// directory.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

var version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	LogLevel string           `name:"log-level" env:"LKFS_LOG_LEVEL" default:"warn" enum:"debug,info,warn,error" help:"Diagnostic log level (${enum})."`
	Version  kong.VersionFlag `short:"v" help:"Show version information."`

	Measure     MeasureCmd     `cmd:"" help:"Measure integrated loudness and sample peak of WAV files."`
	Response    ResponseCmd    `cmd:"" help:"Print the analytic and FFT-measured K-weighting response."`
	Calibration CalibrationCmd `cmd:"" help:"Print K-weighting coefficients and the calibration constant."`
}

// globals is bound into every command's Run method.
type globals struct {
	out    io.Writer
	logger *slog.Logger
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("lkfs"),
		kong.Description("ITU-R BS.1770 loudness meter"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	cli := &CLI{}
	parser, err := newParser(cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = ctx.Run(&globals{
		out:    os.Stdout,
		logger: newLogger(os.Stderr, cli.LogLevel),
	})
	ctx.FatalIfErrorf(err)
}

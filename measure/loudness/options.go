package loudness

import "log/slog"

// MeterConfig defines configuration for the loudness meter.
type MeterConfig struct {
	Logger *slog.Logger
}

// MeterOption mutates a MeterConfig.
type MeterOption func(*MeterConfig)

// DefaultMeterConfig returns a config that discards log output.
func DefaultMeterConfig() MeterConfig {
	return MeterConfig{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger for diagnostics (ignored blocks, recalibration,
// integration summaries).
func WithLogger(logger *slog.Logger) MeterOption {
	return func(cfg *MeterConfig) {
		if logger != nil {
			cfg.Logger = logger
		}
	}
}

// ApplyMeterOptions applies zero or more options to the default config.
func ApplyMeterOptions(opts ...MeterOption) MeterConfig {
	cfg := DefaultMeterConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

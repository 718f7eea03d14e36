package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger builds the process-wide logger. Every line carries the service
// name so aggregated logs from the API and the CLI commands stay
// attributable. Unknown levels fall back to info rather than failing
// startup.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(logOutput(cfg.Format)).
		Level(level).
		With().
		Timestamp().
		Str("service", "talentpulse").
		Logger()

	log.Logger = logger
	return logger
}

func logOutput(format string) io.Writer {
	if strings.EqualFold(format, "console") {
		return zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}
	return os.Stdout
}

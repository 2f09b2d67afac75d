package telemetry

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LoggerOptions controls the global logger installed by SetupLogger.
type LoggerOptions struct {
	// Debug lowers the threshold to debug level.
	Debug bool

	// Quiet raises the threshold to error level. Debug wins when both
	// are set; the config validator rejects that combination anyway.
	Quiet bool

	// NoColor disables ANSI colors on the console writer.
	NoColor bool

	// LogFile receives a structured copy of every record in addition
	// to the console. Empty disables file logging.
	LogFile string
}

// SetupLogger configures the process-wide zerolog logger. Console
// output goes to stderr through a ConsoleWriter; when a log file is
// configured, records are duplicated to it in JSON form. Returns a
// closer for the log file, which may be nil.
func SetupLogger(opts LoggerOptions) (io.Closer, error) {
	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    opts.NoColor,
	}

	var closer io.Closer
	writer := io.Writer(console)
	if opts.LogFile != "" {
		file, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", opts.LogFile, err)
		}
		closer = file
		writer = zerolog.MultiLevelWriter(console, file)
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()

	switch {
	case opts.Debug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case opts.Quiet:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return closer, nil
}

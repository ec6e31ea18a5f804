package log

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New builds the console logger shared by the gateway and the CLI. The CLI
// passes stderr so command output on stdout stays clean.
func New(environment string, out io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    environment == "production",
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("env", environment).
		Logger()

	switch environment {
	case "production":
		logger = logger.Level(zerolog.InfoLevel)
	case "quiet":
		logger = logger.Level(zerolog.WarnLevel)
	default:
		logger = logger.Level(zerolog.DebugLevel)
	}

	return logger
}

// Package logging wraps zerolog with Tokbarr's leveled print helpers.
package logging

import (
	"fmt"
	"os"
	"time"
	"tokbarr/internal/domain/consts"

	"github.com/rs/zerolog"
)

var (
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	// Level gates D() output. Raised via the debug-level flag.
	Level int
)

// SetupLogging attaches the program log file alongside console output.
func SetupLogging(logFilePath string) error {
	f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, consts.PermsLogFile)
	if err != nil {
		return fmt.Errorf("failed to open log file %q: %w", logFilePath, err)
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	logger = zerolog.New(zerolog.MultiLevelWriter(console, f)).
		With().Timestamp().Logger()

	logger.Info().Msgf("=========== %s ===========", time.Now().Format(time.RFC1123Z))
	return nil
}

// I logs at info level.
func I(format string, args ...any) {
	logger.Info().Msgf(format, args...)
}

// S logs a success message.
func S(format string, args ...any) {
	logger.Info().Str("result", "success").Msgf(format, args...)
}

// W logs at warn level.
func W(format string, args ...any) {
	logger.Warn().Msgf(format, args...)
}

// E logs at error level.
func E(format string, args ...any) {
	logger.Error().Msgf(format, args...)
}

// D logs debug output gated by verbosity level l.
func D(l int, format string, args ...any) {
	if l > Level {
		return
	}
	logger.Debug().Msgf(format, args...)
}

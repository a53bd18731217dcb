// Package log wraps zerolog into the single structured logger threaded
// through cmd/ entry points and internal/api/*, replacing the teacher's
// plain log.Printf call sites with the same call-site shape in structured
// form (.Info().Str(...).Msg(...) instead of log.Printf("...: %s", ...)).
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger at the given level, writing human-readable
// console output when pretty is true (local development) or raw JSON lines
// otherwise (production/container logs).
func New(level zerolog.Level, pretty bool) zerolog.Logger {
	var out io.Writer = os.Stderr
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// ParseLevel maps a config string ("debug", "info", ...) to a
// zerolog.Level, defaulting to zerolog.InfoLevel on an unrecognized value.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

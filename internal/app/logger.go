package app

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// newLogger builds the CLI logger. Format "json" writes one JSON object per
// line; anything else writes human-readable console output.
func newLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}
	out := w
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: w, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

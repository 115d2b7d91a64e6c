// Package logging builds the root zerolog logger for the binaries.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"xdao.co/wfledger/fault"
)

// New returns a logger writing to w at the named level. Console output is
// human-readable; otherwise each event is one JSON line.
func New(w io.Writer, level string, console bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fault.Wrap(fault.KindConfig, "WFL-CFG-013", "invalid log level", err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

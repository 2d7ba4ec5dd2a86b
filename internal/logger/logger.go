// Package logger provides the configured zerolog logger.
package logger

import (
	"io"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

func init() {
	zerolog.ErrorStackMarshaler = marshalStack
}

// marshalStack renders the pkg/errors stack of err, capturing one at the
// logging site when err carries none.
func marshalStack(err error) interface{} {
	if _, ok := err.(stackTracer); !ok {
		err = pkgerrors.WithStack(err)
	}
	return zpkgerrors.MarshalStack(err)
}

// New returns a logger writing to w at the given level ("debug", "warn", ...).
// Unknown levels fall back to warn. Call sites use .Stack() on error events
// to include stacks.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Str("app", "binance-trader").
		Timestamp().
		Logger()
}

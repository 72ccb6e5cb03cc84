package utils

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// InitLogger configures the default slog logger. Debug lowers the level from
// warn to debug. Terminals get the coloured tint handler, anything else plain text.
// If w is nil, os.Stderr is used.
func InitLogger(debug bool, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if IsTerminal(w) {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

// Logger returns the default logger tagged with a component attribute.
func Logger(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}

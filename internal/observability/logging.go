package observability

import (
	"log/slog"
	"os"
)

// Log is the application-wide structured logger. Services use it for
// side-effect failures that are swallowed rather than propagated.
var Log *slog.Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	Log = slog.New(handler)
}

// SetLogger replaces the global logger, mainly for tests.
func SetLogger(l *slog.Logger) {
	Log = l
}

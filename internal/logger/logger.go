package logger

import (
	"io"
	"log/slog"
	"os"
)

// Init installs the process-wide slog logger. Development gets a readable text
// handler at debug level, every other environment gets JSON at info level.
func Init(env string) *slog.Logger {
	return initWith(os.Stdout, env)
}

func initWith(w io.Writer, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler

	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		opts.AddSource = true
		handler = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)

	return l
}

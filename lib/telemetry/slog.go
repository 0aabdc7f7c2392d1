package telemetry

import (
	"io"
	"log/slog"
	"os"
)

// InitSlog installs the default logger. Logs go to stderr and, when logFile
// is set, are appended to it. The returned func closes the log file.
func InitSlog(verbose bool, logFile string) (func() error, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	var (
		out     io.Writer = os.Stderr
		closeFn           = func() error { return nil }
	)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return closeFn, err
		}
		out = io.MultiWriter(os.Stderr, f)
		closeFn = f.Close
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return closeFn, nil
}

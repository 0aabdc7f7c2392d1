package serviceutil

import (
	"log/slog"
	"os"
)

// Fatal logs the error and exits, for failures that leave nothing to clean
// up.
func Fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}

// Close runs fn and logs a warning when it fails, for deferred cleanup
// whose error has nowhere else to go.
func Close(name string, fn func() error) {
	err := fn()
	if err != nil {
		slog.Warn("failed to close", "name", name, "err", err)
	}
}

package logging

import (
	"log/slog"
	"os"
)

// SetupLogger installs the process-wide slog logger. Level and format are
// controlled by LOG_LEVEL and LOG_FORMAT ("text" or "json").
func SetupLogger() error {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") != "" {
		err := logLevel.UnmarshalText([]byte(os.Getenv("LOG_LEVEL")))
		if err != nil {
			slog.Error("Error parsing log level", "error", err)
			return err
		}
	}
	opts := &slog.HandlerOptions{Level: &logLevel}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

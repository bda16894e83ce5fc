package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// New initializes a logger that writes to both stdout and a log file.
// The returned file is nil when no log file was requested or it could
// not be opened; callers own closing it.
func New(outputDir, logFileName, level string) (*slog.Logger, *os.File) {
	var logWriter io.Writer = os.Stdout
	var logFile *os.File

	handlerOpts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	if logFileName != "" {
		logPath := filepath.Join(outputDir, logFileName)
		var err error
		logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			slog.Error("Failed to open log file, continuing with stdout only", "error", err, "path", logPath)
		} else {
			mw := io.MultiWriter(os.Stdout, logFile)
			logWriter = mw
		}
	}

	logger := slog.New(slog.NewJSONHandler(logWriter, handlerOpts))
	slog.SetDefault(logger)

	return logger, logFile
}

// ParseLevel maps a level name to a slog level. Unknown names fall back
// to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

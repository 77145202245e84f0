package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	gormlogger "gorm.io/gorm/logger"
)

// Init builds the process logger and installs it as the slog default.
func Init(level, format string) *slog.Logger {
	return initTo(os.Stdout, level, format)
}

func initTo(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GormLevel picks the SQL log verbosity for an environment.
func GormLevel(environment string) gormlogger.LogLevel {
	if environment == "development" {
		return gormlogger.Info
	}
	return gormlogger.Warn
}

// Package logger builds the zap logger used across the application and
// provides helpers for structured fields.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to stdout in console or json encoding.
func New(json bool, debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoding := "console"

	if json {
		encoding = "json"
	}

	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}

	return cfg.Build()
}

// TruncateTitle cuts a listing title to limit runes for a log line. The cut
// never ends in whitespace and is marked with "...".
func TruncateTitle(title string, limit int) string {
	title = strings.Join(strings.Fields(title), " ")
	if limit <= 0 {
		return ""
	}

	runes := []rune(title)
	if len(runes) <= limit {
		return title
	}
	return strings.TrimRight(string(runes[:limit]), " ") + "..."
}

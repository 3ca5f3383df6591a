package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Node   string // stamped on every line so merged multi-node logs stay attributable
}

// New creates a zerolog logger from config. An unknown level falls back to
// info rather than failing; a typo in LOG_LEVEL should not keep a node from
// booting.
func New(cfg Config) zerolog.Logger {
	ctx := zerolog.New(output(cfg.Format)).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Caller()

	if cfg.Node != "" {
		ctx = ctx.Str("node", cfg.Node)
	}

	return ctx.Logger()
}

func output(format string) io.Writer {
	if format == "console" {
		return zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	return os.Stdout
}

var levels = map[string]zerolog.Level{
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
}

func parseLevel(level string) zerolog.Level {
	if l, ok := levels[level]; ok {
		return l
	}

	return zerolog.InfoLevel
}

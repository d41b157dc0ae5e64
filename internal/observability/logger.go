package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const LogLevelEnv = "SSHGW_LOG_LEVEL"

// NewLogger builds the console logger. Output goes to w, which is stderr in the
// CLI: stdout carries MCP frames and command output.
func NewLogger(w io.Writer, app, level string) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}

	return zerolog.New(output).Level(lvl).With().Timestamp().Str("app", app).Logger(), nil
}

// ParseLevel accepts the usual zerolog names. An empty string falls back to
// SSHGW_LOG_LEVEL and then to warn.
func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		level = strings.TrimSpace(os.Getenv(LogLevelEnv))
	}
	if level == "" {
		return zerolog.WarnLevel, nil
	}

	return zerolog.ParseLevel(strings.ToLower(level))
}

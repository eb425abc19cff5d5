// Package logging configures the global slog logger for the clipbridge binary.
//
// The watch daemon logs continuously, so its default output must be pleasant
// on a terminal and machine-parseable when redirected. One-shot commands
// (list, status, add) print their results on stdout and only want warnings on
// stderr, which is what Quiet is for.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Format selects the log output format.
type Format string

const (
	FormatAuto Format = "auto" // tinted on a TTY, JSON otherwise
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat maps a user-supplied string to a Format. Unknown values fall
// back to FormatAuto rather than erroring; a bad --log-format must never keep
// the daemon from starting.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "tint", "human":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// ParseLevel maps a user-supplied string to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Quiet raises level to Warn unless the user asked for something even less
// verbose. One-shot commands use it so stderr stays empty on the happy path.
func Quiet(level slog.Level) slog.Level {
	if level < slog.LevelWarn {
		return slog.LevelWarn
	}
	return level
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Setup installs the global slog logger on stderr. Call once per process,
// after flags and config are resolved.
func Setup(format Format, level slog.Level) {
	slog.SetDefault(slog.New(newHandler(os.Stderr, format, level)))
}

func newHandler(w io.Writer, format Format, level slog.Level) slog.Handler {
	if format == FormatText || (format == FormatAuto && IsTTY(w)) {
		return tinter.NewHandler(w, &tinter.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

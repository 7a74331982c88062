package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// tint palette index for highlighted file paths.
const tintAttrCodePath = 6

func ParseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug", "trace":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "fatal":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", levelStr)
	}
}

// New builds a tint-backed logger. Unknown levels fall back to info.
func New(w io.Writer, level string, color bool) *slog.Logger {
	parsed, err := ParseLevel(level)
	if err != nil {
		parsed = slog.LevelInfo
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      parsed,
		TimeFormat: time.Kitchen,
		NoColor:    !color,
	}))
}

// Discard is used where no logger was supplied.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Path renders a file path attribute in its own colour.
func Path(path string) slog.Attr {
	return tint.Attr(tintAttrCodePath, slog.String("path", path))
}

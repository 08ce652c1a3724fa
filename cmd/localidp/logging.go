package main

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/tendant/local-idp/pkg/config"
)

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	switch strings.ToLower(format) {
	case config.LogFormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource: true,
			Level:     level,
		}))
	case config.LogFormatTint:
		return slog.New(tint.NewHandler(w, &tint.Options{
			AddSource:  true,
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			AddSource: true,
			Level:     level,
		}))
	}
}

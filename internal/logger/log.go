// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps a slog.Logger so that it can be passed around the application
// without depending on the handler that backs it.
type Logger struct {
	*slog.Logger
}

// New returns a Logger that writes text records to stderr.
func New(level slog.Level) *Logger {
	return NewLogger(level, os.Stderr)
}

// NewLogger returns a Logger that writes text records with at least the given
// level to output.
func NewLogger(level slog.Level, output io.Writer) *Logger {
	return &Logger{slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))}
}

// Discard returns a Logger that drops every record.
func Discard() *Logger {
	return NewLogger(slog.LevelError, io.Discard)
}

// Component returns a child Logger that tags every record with the given
// component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{l.With(slog.String("component", name))}
}

// Err returns the slog attribute used for errors.
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}

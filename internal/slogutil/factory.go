package slogutil

import (
	"io"
	"log/slog"
	"os"
)

// Options configures the logger built by Setup.
type Options struct {
	Console    io.Writer  // usually os.Stderr; nil disables console output
	Level      slog.Level // console level
	File       string     // optional log file, always written at debug level
	MaxSize    string     // rotate File above this size, e.g. "10MB"
	MaxBackups int
}

// Logging bundles the configured logger with its warning counter and the
// files it keeps open.
type Logging struct {
	Logger  *slog.Logger
	Counter *CountingHandler
	closers []io.Closer
}

// Setup builds the logger for a CLI run. When the log file cannot be opened
// the error is returned together with a console-only logger.
func Setup(opts Options) (*Logging, error) {
	var handlers []slog.Handler
	if opts.Console != nil {
		handlers = append(handlers, NewHandler(opts.Console, &slog.HandlerOptions{Level: opts.Level}))
	}

	l := &Logging{}
	var fileErr error
	if opts.File != "" {
		w, closer, err := openLogFile(opts.File, opts.MaxSize, opts.MaxBackups)
		if err != nil {
			fileErr = err
		} else {
			handlers = append(handlers, NewHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
			l.closers = append(l.closers, closer)
		}
	}

	var inner slog.Handler = NewHandler(io.Discard, &slog.HandlerOptions{Level: levelSilent})
	switch len(handlers) {
	case 0:
	case 1:
		inner = handlers[0]
	default:
		inner = NewTeeHandler(handlers...)
	}
	l.Counter = NewCountingHandler(inner)
	l.Logger = slog.New(l.Counter)
	return l, fileErr
}

func openLogFile(path, maxSize string, maxBackups int) (io.Writer, io.Closer, error) {
	if size := ParseSize(maxSize); size > 0 {
		rf, err := OpenRotatingFile(path, size, maxBackups)
		if err != nil {
			return nil, nil, err
		}
		return rf, rf, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

// Close closes every open log file.
func (l *Logging) Close() error {
	var firstErr error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.closers = nil
	return firstErr
}

// Package logging builds the process logger: slog text output to the given
// writer, optionally mirrored into a size-rotated log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/koifit/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger writing to out and, when cfg.File is set, to a
// rotated file as well. The returned closer releases the file.
func New(cfg config.LoggingConfig, out io.Writer) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, fmt.Errorf("parsing log level: %w", err)
	}

	if cfg.File == "" {
		return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), nopCloser{}, nil
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}
	w := io.MultiWriter(out, file)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), file, nil
}

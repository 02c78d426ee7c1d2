// Package logging configures logrus and carries request-scoped loggers.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type ctxKey struct{}

// New builds a logger writing to out. format is "json" or "text".
func New(level, format string, out io.Writer) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "parse log level %q", level)
	}
	if out == nil {
		out = os.Stdout
	}

	logger := log.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	switch format {
	case "text":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		logger.SetFormatter(&log.JSONFormatter{})
	}
	return logger, nil
}

// WithLogger stores entry in ctx.
func WithLogger(ctx context.Context, entry log.FieldLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// FromContext returns the logger stored in ctx, or the standard logger.
func FromContext(ctx context.Context) log.FieldLogger {
	if entry, ok := ctx.Value(ctxKey{}).(log.FieldLogger); ok {
		return entry
	}
	return log.StandardLogger()
}

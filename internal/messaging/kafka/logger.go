package kafka

import (
	"github.com/ThreeDotsLabs/watermill"
	log "github.com/sirupsen/logrus"
)

// LogrusAdapter routes watermill logs to logrus.
type LogrusAdapter struct {
	entry log.FieldLogger
}

// NewLogrusAdapter wraps logger as a watermill.LoggerAdapter.
func NewLogrusAdapter(logger log.FieldLogger) *LogrusAdapter {
	return &LogrusAdapter{entry: logger}
}

func (a *LogrusAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.entry.WithFields(log.Fields(fields)).WithError(err).Error(msg)
}

func (a *LogrusAdapter) Info(msg string, fields watermill.LogFields) {
	a.entry.WithFields(log.Fields(fields)).Info(msg)
}

func (a *LogrusAdapter) Debug(msg string, fields watermill.LogFields) {
	a.entry.WithFields(log.Fields(fields)).Debug(msg)
}

// Trace is logged at debug level; logrus trace is rarely enabled.
func (a *LogrusAdapter) Trace(msg string, fields watermill.LogFields) {
	a.entry.WithFields(log.Fields(fields)).Debug(msg)
}

func (a *LogrusAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &LogrusAdapter{entry: a.entry.WithFields(log.Fields(fields))}
}

package messaging

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Topics for order lifecycle events, before any deployment prefix.
const (
	TopicOrderPlaced   = "orders.placed"
	TopicOrderCanceled = "orders.canceled"
)

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
	Close() error
}

// LogPublisher writes events to the log. It is used when no broker is configured.
type LogPublisher struct {
	Logger log.FieldLogger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger log.FieldLogger) *LogPublisher {
	return &LogPublisher{Logger: logger}
}

func (p *LogPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}
	p.Logger.WithFields(log.Fields{
		"topic":   topic,
		"key":     key,
		"payload": string(payload),
	}).Info("Event published")
	return nil
}

func (p *LogPublisher) Close() error { return nil }

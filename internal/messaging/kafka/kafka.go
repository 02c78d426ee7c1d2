package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	wkafka "github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/egannguyen/go-commerce-api/internal/messaging"
)

const keyMetadata = "partition_key"

// messagePublisher is the part of a watermill publisher the broker uses.
type messagePublisher interface {
	Publish(topic string, messages ...*message.Message) error
	Close() error
}

type kafkaBroker struct {
	publisher   messagePublisher
	topicPrefix string
}

// Config configures the Kafka broker.
type Config struct {
	Brokers     []string
	ClientID    string
	TopicPrefix string
}

// NewKafkaBroker creates a Kafka publisher. Messages sharing a key land on
// the same partition.
func NewKafkaBroker(cfg Config, logger watermill.LoggerAdapter) (messaging.Publisher, error) {
	saramaCfg := wkafka.DefaultSaramaSyncPublisherConfig()
	if cfg.ClientID != "" {
		saramaCfg.ClientID = cfg.ClientID
	}
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 3

	pub, err := wkafka.NewPublisher(wkafka.PublisherConfig{
		Brokers: cfg.Brokers,
		Marshaler: wkafka.NewWithPartitioningMarshaler(func(topic string, msg *message.Message) (string, error) {
			return msg.Metadata.Get(keyMetadata), nil
		}),
		OverwriteSaramaConfig: saramaCfg,
	}, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create kafka publisher")
	}
	return newBroker(pub, cfg.TopicPrefix), nil
}

func newBroker(pub messagePublisher, topicPrefix string) *kafkaBroker {
	return &kafkaBroker{publisher: pub, topicPrefix: topicPrefix}
}

func (k *kafkaBroker) topic(name string) string {
	if k.topicPrefix == "" {
		return name
	}
	return k.topicPrefix + "." + name
}

func (k *kafkaBroker) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(keyMetadata, key)
	if typed, ok := event.(interface{ EventType() string }); ok {
		msg.Metadata.Set("event_type", typed.EventType())
	}
	msg.SetContext(ctx)

	if err := k.publisher.Publish(k.topic(topic), msg); err != nil {
		return errors.Wrapf(err, "failed to publish to %s", k.topic(topic))
	}
	return nil
}

func (k *kafkaBroker) Close() error {
	return k.publisher.Close()
}

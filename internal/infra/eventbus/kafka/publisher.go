// Package kafka provides the Kafka-backed domain event publisher.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ecomops/privacy-engine/internal/domain/events"
	"github.com/ecomops/privacy-engine/pkg/common/logger"
)

var _ events.DomainEventPublisher = (*DomainEventPublisher)(nil)

// Config defines the connection settings for the event publisher.
type Config struct {
	Brokers []string
	Topic   string
}

// DomainEventPublisher publishes erasure lifecycle events to a Kafka topic,
// partitioned by event key so all events for one customer stay ordered.
type DomainEventPublisher struct {
	producer sarama.SyncProducer
	topic    string

	logger *logger.Logger
	tracer trace.Tracer
}

// NewDomainEventPublisher connects a sync producer to the configured brokers.
func NewDomainEventPublisher(cfg Config, log *logger.Logger, tracer trace.Tracer) (*DomainEventPublisher, error) {
	producerConfig := sarama.NewConfig()
	producerConfig.Producer.RequiredAcks = sarama.WaitForAll
	producerConfig.Producer.Return.Successes = true
	producerConfig.Producer.Partitioner = sarama.NewHashPartitioner
	producerConfig.Version = sarama.V3_6_0_0

	producer, err := sarama.NewSyncProducer(cfg.Brokers, producerConfig)
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}

	return &DomainEventPublisher{
		producer: producer,
		topic:    cfg.Topic,
		logger:   log.With("component", "kafka_event_publisher"),
		tracer:   tracer,
	}, nil
}

// PublishDomainEvent serializes the event as JSON and produces it to the
// configured topic.
func (p *DomainEventPublisher) PublishDomainEvent(ctx context.Context, event events.DomainEvent, opts ...events.PublishOption) error {
	var params events.PublishParams
	for _, opt := range opts {
		opt(&params)
	}
	key := params.Key
	if key == "" {
		key = event.Key
	}

	ctx, span := p.tracer.Start(ctx, "kafka.publish_domain_event",
		trace.WithAttributes(
			attribute.String("event_type", string(event.Type)),
			attribute.String("key", key),
			attribute.String("topic", p.topic),
		),
	)
	defer span.End()

	payload, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshaling event %s: %w", event.Type, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("publishing event %s: %w", event.Type, err)
	}

	p.logger.Debug(ctx, "Domain event published",
		"event_type", string(event.Type), "partition", partition, "offset", offset)
	return nil
}

// Close shuts down the underlying producer.
func (p *DomainEventPublisher) Close() error { return p.producer.Close() }

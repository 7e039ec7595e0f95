package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/albazaar/storefront/internal/domain/shared"
	"github.com/albazaar/storefront/internal/infrastructure/config"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DefaultWriteTimeout bounds a single Kafka write
const DefaultWriteTimeout = 5 * time.Second

// ErrNoBrokers is returned when Kafka publishing is enabled without brokers
var ErrNoBrokers = errors.New("event: no kafka brokers configured")

// MessageWriter is the part of *kafka.Writer the publisher uses
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Envelope is the JSON value written for every event
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Payload       json.RawMessage `json:"payload"`
}

// KafkaPublisher forwards domain events to a Kafka topic. Messages are keyed
// by aggregate ID so events of one session or checkout stay ordered.
type KafkaPublisher struct {
	writer     MessageWriter
	topic      string
	eventTypes []string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewKafkaPublisher creates a publisher writing to cfg.KafkaTopic
func NewKafkaPublisher(cfg config.EventsConfig, logger *zap.Logger, eventTypes ...string) (*KafkaPublisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, ErrNoBrokers
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
	return NewKafkaPublisherWithWriter(writer, cfg.KafkaTopic, logger, eventTypes...), nil
}

// NewKafkaPublisherWithWriter creates a publisher on an existing writer
func NewKafkaPublisherWithWriter(writer MessageWriter, topic string, logger *zap.Logger, eventTypes ...string) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaPublisher{
		writer:     writer,
		topic:      topic,
		eventTypes: eventTypes,
		timeout:    DefaultWriteTimeout,
		logger:     logger.With(zap.String("topic", topic)),
	}
}

// EventTypes returns the types this publisher forwards; empty means all
func (p *KafkaPublisher) EventTypes() []string {
	return p.eventTypes
}

// Handle writes event to Kafka
func (p *KafkaPublisher) Handle(ctx context.Context, event shared.DomainEvent) error {
	msg, err := NewMessage(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("event: write %s to kafka: %w", event.EventType(), err)
	}
	p.logger.Debug("event published",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
	)
	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NewMessage builds the Kafka message for event
func NewMessage(event shared.DomainEvent) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("event: marshal %s: %w", event.EventType(), err)
	}
	value, err := json.Marshal(Envelope{
		EventID:       event.EventID().String(),
		EventType:     event.EventType(),
		OccurredAt:    event.OccurredAt().UTC(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Payload:       payload,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("event: marshal envelope: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.AggregateID()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType())},
		},
	}, nil
}

var _ shared.EventHandler = (*KafkaPublisher)(nil)

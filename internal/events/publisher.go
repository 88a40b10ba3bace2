package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ponta-ta-taro/tralog4/internal/telemetry/metrics"
	"github.com/ponta-ta-taro/tralog4/internal/telemetry/tracing"
)

const defaultPublishTimeout = 3 * time.Second

type Publisher interface {
	Publish(ctx context.Context, event WorkoutEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewPublisher returns a kafka backed publisher, or a no-op one when no
// brokers are configured.
func NewPublisher(brokers []string, topic string, metricsManager *metrics.Manager) Publisher {
	if len(brokers) == 0 {
		log.Debugln("no kafka brokers configured, workout events disabled")
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic, metricsManager)
}

type KafkaPublisher struct {
	writer         messageWriter
	topic          string
	timeout        time.Duration
	metricsManager *metrics.Manager
}

func NewKafkaPublisher(brokers []string, topic string, metricsManager *metrics.Manager) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
		topic:          topic,
		timeout:        defaultPublishTimeout,
		metricsManager: metricsManager,
	}
}

// Publish writes the event keyed by user id, so that one user's events stay
// ordered within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event WorkoutEvent) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "events.publish")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
		p.count(err)
	}()
	span.SetAttributes(attribute.String("event.type", string(event.Type)))
	span.SetAttributes(attribute.String("topic", p.topic))

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: value,
		Time:  event.OccurredAt,
	}); err != nil {
		return fmt.Errorf("write event to %s: %w", p.topic, err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) count(err error) {
	if p.metricsManager == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	p.metricsManager.CounterEventsPublished.WithLabelValues(result).Inc()
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, WorkoutEvent) error {
	return nil
}

func (NopPublisher) Close() error {
	return nil
}
